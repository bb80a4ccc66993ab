package derive

import "strconv"

func uintKey(v uint64) string { return strconv.FormatUint(v, 10) }
