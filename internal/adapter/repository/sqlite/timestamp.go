package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestamp stores times as RFC 3339 text in UTC.
type timestamp time.Time

func (t timestamp) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(time.RFC3339Nano), nil
}

func (t *timestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = timestamp(time.Time{})
		return nil
	case time.Time:
		*t = timestamp(v.UTC())
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}

	return fmt.Errorf("cannot scan type %T into timestamp", value)
}

func (t *timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.DateTime, s)
		if err != nil {
			return err
		}
	}

	*t = timestamp(parsed.UTC())
	return nil
}

func (t timestamp) Time() time.Time {
	return time.Time(t)
}
