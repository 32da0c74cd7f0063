package store

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimewatch/pkg/models"
)

func openTestStore(t *testing.T) {
	t.Helper()
	require.NoError(t, Open(t.TempDir()))
	t.Cleanup(func() { _ = Close() })
}

func TestOpenCloseReady(t *testing.T) {
	assert.False(t, Ready())
	require.NoError(t, Open(t.TempDir()))
	assert.True(t, Ready())
	require.NoError(t, Close())
	assert.False(t, Ready())
}

func TestAppendAndListMessages(t *testing.T) {
	openTestStore(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := AppendMessage("u1", models.Message{Text: text, Sender: models.SenderUser})
		require.NoError(t, err)
	}
	_, err := AppendMessage("u2", models.Message{Text: "other user", Sender: models.SenderUser})
	require.NoError(t, err)

	msgs, err := ListMessages("u1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, "three", msgs[2].Text)
	for _, m := range msgs {
		assert.Equal(t, "u1", m.UserID)
		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Timestamp)
	}
}

func TestListMessagesLimitKeepsTail(t *testing.T) {
	openTestStore(t)

	for _, text := range []string{"a", "b", "c", "d", "e"} {
		_, err := AppendMessage("u1", models.Message{Text: text, Sender: models.SenderUser})
		require.NoError(t, err)
	}
	msgs, err := ListMessages("u1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// The most recent entries, still ascending.
	assert.Equal(t, "d", msgs[0].Text)
	assert.Equal(t, "e", msgs[1].Text)
}

func TestListMessagesEmpty(t *testing.T) {
	openTestStore(t)
	msgs, err := ListMessages("nobody", 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAppendMessagePublishes(t *testing.T) {
	openTestStore(t)

	ch, cancel := Events().Subscribe(ChatTopic("u1"))
	defer cancel()

	_, err := AppendMessage("u1", models.Message{Text: "ping", Sender: models.SenderUser})
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, "message", ev.Kind)
		assert.Contains(t, string(ev.Data), `"ping"`)
	default:
		t.Fatal("expected a published chat event")
	}
}

func TestChatUsers(t *testing.T) {
	openTestStore(t)

	for _, u := range []string{"alice", "bob"} {
		_, err := AppendMessage(u, models.Message{Text: "hi", Sender: models.SenderUser})
		require.NoError(t, err)
		_, err = AppendMessage(u, models.Message{Text: "again", Sender: models.SenderUser})
		require.NoError(t, err)
	}
	users, err := ChatUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestPruneMessages(t *testing.T) {
	openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := AppendMessage("u1", models.Message{Text: "m", Sender: models.SenderUser})
		require.NoError(t, err)
	}
	deleted, err := PruneMessages("u1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	msgs, err := ListMessages("u1", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	deleted, err = PruneMessages("u1", 2)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCreateReportForcesPending(t *testing.T) {
	openTestStore(t)

	r, err := CreateReport(models.CrimeReport{
		CrimeType:   models.CrimeTheft,
		Description: "bike stolen",
		Location:    "market",
		Status:      models.StatusResolved,
		UserID:      "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, r.Status)
	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.Timestamp)

	got, err := GetReport(r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "bike stolen", got.Description)
}

func TestCreateReportRequiresSubmitter(t *testing.T) {
	openTestStore(t)
	_, err := CreateReport(models.CrimeReport{CrimeType: models.CrimeFraud})
	assert.Error(t, err)
}

func TestListReportsDescending(t *testing.T) {
	openTestStore(t)

	for _, loc := range []string{"first", "second", "third"} {
		_, err := CreateReport(models.CrimeReport{CrimeType: models.CrimeOther, Location: loc, UserID: "u1"})
		require.NoError(t, err)
	}
	reports, err := ListReports(0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "third", reports[0].Location)
	assert.Equal(t, "first", reports[2].Location)

	bounded, err := ListReports(2)
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	assert.Equal(t, "third", bounded[0].Location)
}

func TestUpdateReportStatus(t *testing.T) {
	openTestStore(t)

	require.NoError(t, SaveProfile("u1", models.UserProfile{Name: "Alice"}))
	r, err := CreateReport(models.CrimeReport{CrimeType: models.CrimeAssault, UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, AppendReportRef("u1", models.ReportRef{ID: r.ID, Type: r.CrimeType, Timestamp: r.Timestamp, Status: r.Status}))

	updated, err := UpdateReportStatus(r.ID, models.StatusInvestigating)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvestigating, updated.Status)

	got, err := GetReport(r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvestigating, got.Status)

	p, err := GetProfile("u1")
	require.NoError(t, err)
	require.Len(t, p.Reports, 1)
	assert.Equal(t, models.StatusInvestigating, p.Reports[0].Status)
}

func TestCreateReportPublishesOnFeed(t *testing.T) {
	openTestStore(t)

	ch, cancel := Events().Subscribe(TopicFeed)
	defer cancel()

	_, err := CreateReport(models.CrimeReport{CrimeType: models.CrimeVandalism, Location: "park", UserID: "u1"})
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, "report", ev.Kind)
		assert.Contains(t, string(ev.Data), `"park"`)
	default:
		t.Fatal("expected a published feed event")
	}
}

func TestProfileRoundTripAndReportIndex(t *testing.T) {
	openTestStore(t)

	_, err := GetProfile("u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveProfile("u1", models.UserProfile{Name: "Alice", Email: "a@example.com"}))
	require.NoError(t, AppendReportRef("u1", models.ReportRef{ID: "r1", Type: models.CrimeTheft, Status: models.StatusPending}))
	require.NoError(t, AppendReportRef("u1", models.ReportRef{ID: "r2", Type: models.CrimeFraud, Status: models.StatusPending}))

	p, err := GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	require.Len(t, p.Reports, 2)
	assert.Equal(t, "r1", p.Reports[0].ID)
	assert.Equal(t, "r2", p.Reports[1].ID)
}

func TestAccountsAndEmailIndex(t *testing.T) {
	openTestStore(t)

	a := models.Account{ID: "u1", Email: "a@example.com", Name: "Alice", PasswordHash: "x"}
	require.NoError(t, SaveAccount(a))

	got, err := GetAccount("u1")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	byEmail, err := GetAccountByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	taken, err := EmailTaken("a@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = EmailTaken("b@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = GetAccountByEmail("b@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMessagesRendersPlaceholderForBadEntry(t *testing.T) {
	openTestStore(t)

	_, err := AppendMessage("u1", models.Message{Text: "good", Sender: models.SenderUser})
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte(timeKey("chat:u1:msg:")), []byte("{not json"), pebble.Sync))

	msgs, err := ListMessages("u1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "good", msgs[0].Text)
	assert.Equal(t, models.SenderSystem, msgs[1].Sender)
	assert.Equal(t, "This message could not be displayed.", msgs[1].Text)
}
