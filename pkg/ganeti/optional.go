package ganeti

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// OptionalInt is an integer the RAPI may leave out. Ganeti reports missing values as
// null or "-"; both decode to an unknown value, which is distinct from a known zero.
type OptionalInt struct {
	Value int64
	Known bool
}

func Int(v int64) OptionalInt {
	return OptionalInt{Value: v, Known: true}
}

func Unknown() OptionalInt {
	return OptionalInt{}
}

// Ptr returns nil for unknown values.
func (o OptionalInt) Ptr() *int64 {
	if !o.Known {
		return nil
	}
	v := o.Value
	return &v
}

func (o OptionalInt) String() string {
	if !o.Known {
		return "unknown"
	}
	return strconv.FormatInt(o.Value, 10)
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	*o = OptionalInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			*o = Int(v)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// booleans and objects carry no usable integer
		return nil
	}
	*o = Int(int64(f))
	return nil
}

// epoch converts a fractional unix time (ctime, mtime) into a UTC time.
func epoch(v *float64) *time.Time {
	if v == nil {
		return nil
	}
	sec, frac := math.Modf(*v)
	t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
	return &t
}
