package retention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimewatch/pkg/config"
	"crimewatch/pkg/models"
	"crimewatch/pkg/store"
)

func TestRunOncePrunesEveryUser(t *testing.T) {
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })

	for _, u := range []string{"a", "b"} {
		for i := 0; i < 4; i++ {
			_, err := store.AppendMessage(u, models.Message{Text: "m", Sender: models.SenderUser})
			require.NoError(t, err)
		}
	}

	deleted, err := RunOnce(2)
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)

	for _, u := range []string{"a", "b"} {
		msgs, err := store.ListMessages(u, 0)
		require.NoError(t, err)
		assert.Len(t, msgs, 2, "user %s", u)
	}
}

func TestRunOnceDefaultKeep(t *testing.T) {
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })

	for i := 0; i < 3; i++ {
		_, err := store.AppendMessage("u1", models.Message{Text: "m", Sender: models.SenderUser})
		require.NoError(t, err)
	}
	deleted, err := RunOnce(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestStartRejectsBadCron(t *testing.T) {
	_, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "not a cron"})
	assert.Error(t, err)
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), config.RetentionConfig{Enabled: false})
	require.NoError(t, err)
	cancel()
}
