package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine(t *testing.T) {
	c, err := NewClient(Config{Prefix: " .saludcpv. ", GlobalTags: map[string]string{" env ": " prod ", "": "x"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		tags map[string]string
		want string
	}{
		{name: "plain", in: "auth.login", want: "saludcpv.auth.login:1|c|#env:prod"},
		{name: "local tags sorted and win", in: "auth.login", tags: map[string]string{"result": "ok", "env": "stage"},
			want: "saludcpv.auth.login:1|c|#env:stage,result:ok"},
		{name: "unsafe characters", in: " http/request..count ", want: "saludcpv.http_request.count:1|c|#env:prod"},
		{name: "empty name", in: "  ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Line(tt.in, "1", "c", tt.tags))
		})
	}
}

func TestNilAndDisabledClientsDiscard(t *testing.T) {
	var nilClient *Client
	assert.NotPanics(t, func() {
		nilClient.Count("x", 1, nil)
		nilClient.Timing("x", time.Second, nil)
	})
	assert.False(t, nilClient.Enabled())
	assert.NoError(t, nilClient.Close())

	c, err := NewClient(Config{Enabled: true, Address: "  "})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestClient_SendsDatagrams(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "saludcpv"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.True(t, c.Enabled())

	c.Timing("http.duration", 1500*time.Microsecond, map[string]string{"route": "login"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "saludcpv.http.duration:1.5|ms|#route:login", string(buf[:n]))

	require.NoError(t, c.Close())
	assert.False(t, c.Enabled())
}
