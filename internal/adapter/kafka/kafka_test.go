package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/pipeline"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	rec := pipeline.DayRecord{
		Date:   time.Date(2021, 6, 29, 0, 0, 0, 0, time.UTC),
		Family: "gridmet",
		Fields: map[string]field.Field{
			"eto": field.FromSlice(1, 2, []float64{5.0, 6.0}),
			"etr": field.FromSlice(1, 2, []float64{7.0, 8.0}),
		},
		ComputedAt: now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("2021-06-29"), msg.Key)

	var payload recordPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "2021-06-29", payload.Date)
	assert.Equal(t, "gridmet", payload.Family)
	assert.Equal(t, 1, payload.Rows)
	assert.Equal(t, 2, payload.Cols)
	assert.Equal(t, field.Summary{Mean: 5.5, Min: 5.0, Max: 6.0}, payload.Fields["eto"])
	assert.Equal(t, field.Summary{Mean: 7.5, Min: 7.0, Max: 8.0}, payload.Fields["etr"])
	assert.Equal(t, now, payload.ComputedAt)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "family", msg.Headers[0].Key)
	assert.Equal(t, []byte("gridmet"), msg.Headers[0].Value)
	assert.Equal(t, "computed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeScalarRecord(t *testing.T) {
	rec := pipeline.DayRecord{
		Date:   time.Date(2021, 6, 29, 0, 0, 0, 0, time.UTC),
		Family: "gridmet",
		Fields: map[string]field.Field{
			"eto": field.Scalar(5.69),
		},
		ComputedAt: time.Now().UTC(),
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	var payload recordPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.InDelta(t, 5.69, payload.Fields["eto"].Mean, 1e-9)
	assert.Equal(t, 0, payload.Rows)
}
