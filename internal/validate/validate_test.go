package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/validate"
)

type editBody struct {
	CheckIn  *string `json:"checkIn" validate:"omitempty,iso8601"`
	Day      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Limit    int     `json:"limit" validate:"min=1,max=500"`
	Internal string  `json:"-" validate:"max=1"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	v := validate.New()

	bad := "next tuesday"
	err := v.Struct(editBody{CheckIn: &bad, Day: "01/03/2024", Limit: 501})

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "checkIn must be an ISO-8601 timestamp", verr.Fields["checkIn"])
	assert.Equal(t, "date must be formatted as 2006-01-02", verr.Fields["date"])
	assert.Contains(t, verr.Fields["limit"], "limit must be 500 or less")
	assert.Len(t, verr.Fields, 3)
}

func TestStruct_Valid(t *testing.T) {
	v := validate.New()

	ok := "2024-03-01T08:00:00+07:00"
	assert.NoError(t, v.Struct(editBody{CheckIn: &ok, Day: "2024-03-01", Limit: 20}))
	assert.NoError(t, v.Struct(editBody{Limit: 1}))
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	want := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-03-01T01:00:00Z",
		"2024-03-01T08:00:00+07:00",
		"2024-03-01T01:00:00.000Z",
		"2024-03-01 08:00:00+07:00",
		"2024-03-01T08:00:00",
		"2024-03-01 08:00",
	} {
		got, err := validate.ParseTimestamp(in, loc)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := validate.ParseTimestamp("08:00", loc)
	assert.Error(t, err)
}
