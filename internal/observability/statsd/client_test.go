package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMetricName(t *testing.T) {
	tests := map[string]string{
		" job/metric ":  "job_metric",
		"foo..bar":      "foo.bar",
		"multi  space":  "multi__space",
		"slash/name/id": "slash_name_id",
		"...":           "",
	}
	for input, want := range tests {
		assert.Equal(t, want, normalizeMetricName(input), "input %q", input)
	}
}

func TestFormatTags(t *testing.T) {
	t.Run("sorts keys and trims whitespace", func(t *testing.T) {
		got := formatTags(map[string]string{
			"result":    " success ",
			"":          "ignored",
			"operation": "expire",
		})
		assert.Equal(t, "|#operation:expire,result:success", got)
	})

	t.Run("empty and all-blank maps render nothing", func(t *testing.T) {
		assert.Empty(t, formatTags(nil))
		assert.Empty(t, formatTags(map[string]string{" ": "x"}))
	})
}

func TestClientMetricName(t *testing.T) {
	prefixed := &Client{prefix: "hirewire"}
	assert.Equal(t, "hirewire.sweeper.sweep", prefixed.metricName("sweeper.sweep"))
	assert.Equal(t, "hirewire", prefixed.metricName(""))

	bare := &Client{}
	assert.Equal(t, "gateway.call", bare.metricName("gateway.call"))
}

func TestClientEnabledAndClose(t *testing.T) {
	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{enabled: true, conn: clientConn}
	assert.True(t, client.Enabled())

	require.NoError(t, client.Close())
	assert.False(t, client.Enabled())

	// second Close is a no-op
	require.NoError(t, client.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	assert.NoError(t, nilClient.Close())
	nilClient.Count("sweeper.sweep", 1, nil)
	nilClient.Gauge("sweeper.last_success_epoch", 1, nil)
	nilClient.Timing("sweeper.sweep_duration", time.Second, nil)
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestNewClientDialError(t *testing.T) {
	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd dial")
}
