package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryTime(t *testing.T) {
	expected := time.Date(2021, 1, 1, 17, 7, 0, 0, time.UTC)
	for _, value := range []string{
		"2021-01-01T17:07:00Z",
		"2021-01-01T12:07:00-05:00",
		"2021-01-01T17:07:00",
		"2021-01-01T17:07",
		"2021-01-01 17:07",
		" 2021-01-01 17:07:00 ",
		"202101011707",
	} {
		parsed, err := ParseQueryTime(value)
		assert.Nil(t, err, value)
		assert.True(t, expected.Equal(parsed), value)
		assert.Equal(t, time.UTC, parsed.Location())
	}

	day, err := ParseQueryTime("2021-01-01")
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), day)
}

func TestParseQueryTime_Error(t *testing.T) {
	_, err := ParseQueryTime("yesterday")
	assert.NotNil(t, err)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2021-01-01T17:01:17.2Z", FormatTime(time.Date(2021, 1, 1, 17, 1, 17, 200000000, time.UTC)))
	assert.Equal(t, "2021-01-01T17:01:17Z", FormatTime(time.Date(2021, 1, 1, 12, 1, 17, 0, time.FixedZone("EST", -5*3600))))
}
