package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectSelectsSQLite(t *testing.T) {
	db, err := Connect("sqlite://file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.Equal(t, "sqlite", db.Dialector.Name())
}

func TestConnectRejectsEmptyTargets(t *testing.T) {
	_, err := Connect("sqlite://")
	require.Error(t, err)

	_, err = Connect("")
	require.Error(t, err)

	_, err = ConnectRedis("")
	require.Error(t, err)
}

func TestConnectRedisPingsServer(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis("redis://" + server.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "probe", "1", 0).Err())

	server.Close()
	_, err = ConnectRedis("redis://" + server.Addr() + "/0")
	require.Error(t, err)
}
