package outbox

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	id := uuid.NewString()
	env, err := DecodeEnvelope([]byte(fmt.Sprintf(`{"version":1,"eventId":%q,"occurredAt":"2026-03-01T09:00:00Z","data":{"listingId":"x"}}`, id)))
	require.NoError(t, err)
	require.Equal(t, id, env.EventID)
	require.JSONEq(t, `{"listingId":"x"}`, string(env.Data))

	cases := map[string]string{
		"garbage":      `not-json`,
		"future":       fmt.Sprintf(`{"version":%d,"eventId":%q,"data":{}}`, EnvelopeVersion+1, id),
		"zero version": fmt.Sprintf(`{"version":0,"eventId":%q,"data":{}}`, id),
		"bad id":       `{"version":1,"eventId":"evt-1","data":{}}`,
		"null data":    fmt.Sprintf(`{"version":1,"eventId":%q,"data":null}`, id),
		"no data":      fmt.Sprintf(`{"version":1,"eventId":%q}`, id),
	}
	for name, raw := range cases {
		_, err := DecodeEnvelope([]byte(raw))
		require.Error(t, err, name)
	}
}
