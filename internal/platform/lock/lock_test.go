package lock

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_ObtainRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	first, err := l.Obtain(ctx, "billing", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "billing", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = l.Obtain(ctx, "other", time.Minute)
	assert.NoError(t, err, "different keys are independent")

	require.NoError(t, first.Release(ctx))
	_, err = l.Obtain(ctx, "billing", time.Minute)
	assert.NoError(t, err)
}

func TestLocalLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	stale, err := l.Obtain(ctx, "billing", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = l.Obtain(ctx, "billing", time.Minute)
	require.NoError(t, err, "expired lease can be taken over")

	// releasing the stale lease must not free the new holder
	require.NoError(t, stale.Release(ctx))
	_, err = l.Obtain(ctx, "billing", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// serveRESP answers PING with PONG and every other command with an error, which is enough for a
// go-redis handshake to fall back to RESP2 and succeed.
func serveRESP(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				r := bufio.NewReader(conn)
				for {
					args, err := readCommand(r)
					if err != nil {
						return
					}
					reply := "-ERR unknown command\r\n"
					if len(args) > 0 && strings.EqualFold(args[0], "PING") {
						reply = "+PONG\r\n"
					}
					if _, err := conn.Write([]byte(reply)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func readCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(header, "*") {
		return nil, fmt.Errorf("unexpected header %q", header)
	}
	n, err := strconv.Atoi(strings.TrimSpace(header[1:]))
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if _, err := r.ReadString('\n'); err != nil {
			return nil, err
		}
		arg, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		args = append(args, strings.TrimSpace(arg))
	}
	return args, nil
}

func TestConnectRedis_LogsStructuredAddr(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	addr := serveRESP(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	locker, rdb, err := ConnectRedis(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, locker)
	t.Cleanup(func() { _ = rdb.Close() })

	// slog.SetDefault also routes the log package, so go-redis output may share the buffer.
	var record map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var r map[string]any
		require.NoError(t, json.Unmarshal(line, &r))
		if r["msg"] == "connected to redis" {
			record = r
		}
	}
	require.NotNil(t, record, buf.String())
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "connected to redis", record["msg"])
	assert.Equal(t, addr, record["addr"])
}

func TestConnectRedis_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err = ConnectRedis(ctx, addr)
	assert.ErrorContains(t, err, "failed to connect redis at "+addr)
}
