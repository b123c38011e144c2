package gitkv

import (
	"fmt"
	"strconv"
)

// Key canonicalizes an arbitrary value to the string form used for table
// keys, matching how the persisted JSON object stringifies non-string keys.
func Key(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case bool:
		return strconv.FormatBool(k)
	case int:
		return strconv.Itoa(k)
	case int32:
		return strconv.FormatInt(int64(k), 10)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint:
		return strconv.FormatUint(uint64(k), 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	case float32:
		return strconv.FormatFloat(float64(k), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(v)
	}
}
