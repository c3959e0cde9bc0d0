package moderation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"w3bbot/internal/intake"
	"w3bbot/internal/models"
	"w3bbot/internal/storage"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Prompt *intake.Prompt
}

// fakeTransport records every outbound call and can be told to fail per
// chat id or per edit operation.
type fakeTransport struct {
	mu        sync.Mutex
	sent      []sentMessage
	answered  []string
	edits     []string
	cleared   int
	failSend  map[int64]bool
	failEdit  bool
	failClear bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failSend: make(map[int64]bool)}
}

func (f *fakeTransport) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend[chatID] {
		return errors.New("blocked")
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeTransport) SendPrompt(chatID int64, p intake.Prompt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend[chatID] {
		return errors.New("blocked")
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: p.Text, Prompt: &p})
	return nil
}

func (f *fakeTransport) AnswerCallback(callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, text)
	return nil
}

func (f *fakeTransport) EditText(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit {
		return errors.New("message too old")
	}
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTransport) ClearButtons(chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClear {
		return errors.New("message too old")
	}
	f.cleared++
	return nil
}

func (f *fakeTransport) textsFor(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeMirror struct {
	mu      sync.Mutex
	apps    []uint
	changes []uint
	fail    bool
	done    chan struct{}
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{done: make(chan struct{}, 16)}
}

func (f *fakeMirror) RecordApplication(_ context.Context, app *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.apps = append(f.apps, app.ID)
	return nil
}

func (f *fakeMirror) RecordStatusChange(_ context.Context, id uint, _ models.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.changes = append(f.changes, id)
	return nil
}

func (f *fakeMirror) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mirror call never happened")
	}
}

type fixture struct {
	store  *storage.Store
	tr     *fakeTransport
	mirror *fakeMirror
	coord  *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tr := newFakeTransport()
	mirror := newFakeMirror()
	return &fixture{
		store:  store,
		tr:     tr,
		mirror: mirror,
		coord:  NewCoordinator(store, mirror, tr, zap.NewNop()),
	}
}

func completedSession(userID int64) *intake.Session {
	return &intake.Session{
		Step: intake.StepRules,
		Draft: models.Draft{
			TelegramID:    userID,
			Language:      "ru",
			Username:      "@alice",
			FirstName:     "Alice",
			PhoneNumber:   "+15551234567",
			Age:           "18-25",
			Occupation:    "Разработчик",
			InterestTopic: "AI",
			Source:        "Социальные сети",
			Subscribed:    models.SubscriptionYes,
			RulesAgreed:   true,
		},
	}
}

func TestSubmitPersistsConfirmsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "boss", "Boss"))
	require.NoError(t, f.store.SeedAdmin(ctx, 901, "boss2", "Boss2"))

	require.NoError(t, f.coord.Submit(ctx, completedSession(100)))
	f.mirror.wait(t)

	apps, err := f.store.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusPending, apps[0].Status)

	// submitter confirmation carries the assigned id
	texts := f.tr.textsFor(100)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], fmt.Sprintf("#%d", apps[0].ID))

	// both admins got the snapshot with action buttons
	for _, admin := range []int64{900, 901} {
		msgs := f.tr.textsFor(admin)
		require.Len(t, msgs, 1, "admin %d", admin)
		assert.Contains(t, msgs[0], "Новая заявка")
		assert.Contains(t, msgs[0], "@alice")
	}
	assert.Equal(t, []uint{apps[0].ID}, f.mirror.apps)
}

func TestSubmitFanOutToleratesPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	require.NoError(t, f.store.SeedAdmin(ctx, 901, "b", "B"))
	f.tr.failSend[900] = true

	require.NoError(t, f.coord.Submit(ctx, completedSession(100)))
	f.mirror.wait(t)

	assert.Empty(t, f.tr.textsFor(900))
	assert.Len(t, f.tr.textsFor(901), 1)
}

func TestMirrorFailureDoesNotAffectSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	f.mirror.fail = true

	require.NoError(t, f.coord.Submit(ctx, completedSession(100)))
	f.mirror.wait(t)

	apps, err := f.store.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusPending, apps[0].Status)
	assert.Len(t, f.tr.textsFor(100), 1)
}

func submitOne(t *testing.T, f *fixture, userID int64) uint {
	t.Helper()
	require.NoError(t, f.coord.Submit(context.Background(), completedSession(userID)))
	f.mirror.wait(t)
	apps, err := f.store.ListApplications(context.Background())
	require.NoError(t, err)
	return apps[0].ID
}

func TestDecideApprovesAndNotifiesSubmitter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	id := submitOne(t, f, 100)

	f.coord.Decide(ctx, DecisionEvent{
		ActorID:     900,
		CallbackID:  "cb1",
		ChatID:      900,
		MessageID:   5,
		MessageText: "original notification",
		Data:        fmt.Sprintf("approve_%d", id),
	})
	f.mirror.wait(t)

	app, err := f.store.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, app.Status)
	require.NotNil(t, app.ProcessedAt)

	texts := f.tr.textsFor(100)
	require.Len(t, texts, 2) // confirmation + outcome
	assert.Contains(t, texts[1], "одобрена")

	require.Len(t, f.tr.edits, 1)
	assert.True(t, strings.HasPrefix(f.tr.edits[0], "original notification"))
	assert.Contains(t, f.tr.edits[0], "одобрили")
	assert.Equal(t, []string{"Заявка одобрена!"}, f.tr.answered)
	assert.Equal(t, []uint{id}, f.mirror.changes)
}

func TestDecideUnauthorizedIsDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	id := submitOne(t, f, 100)

	f.coord.Decide(ctx, DecisionEvent{
		ActorID:    777, // not on the allow-list
		CallbackID: "cb1",
		Data:       fmt.Sprintf("approve_%d", id),
	})

	app, err := f.store.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, app.Status)
	require.Len(t, f.tr.answered, 1)
	assert.Contains(t, f.tr.answered[0], "нет прав")
}

func TestDecideMissingApplicationIsSilentNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))

	f.coord.Decide(ctx, DecisionEvent{
		ActorID:    900,
		CallbackID: "cb1",
		Data:       "reject_999",
	})

	assert.Equal(t, []string{""}, f.tr.answered)
	assert.Empty(t, f.tr.edits)
	assert.Empty(t, f.tr.sent)
}

func TestDecideEditFallbackChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	id := submitOne(t, f, 100)

	f.tr.failEdit = true
	f.coord.Decide(ctx, DecisionEvent{
		ActorID:     900,
		CallbackID:  "cb1",
		ChatID:      900,
		MessageID:   5,
		MessageText: "original",
		Data:        fmt.Sprintf("reject_%d", id),
	})
	f.mirror.wait(t)

	// full rewrite failed, buttons were stripped instead; decision stands
	assert.Empty(t, f.tr.edits)
	assert.Equal(t, 1, f.tr.cleared)
	app, err := f.store.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, app.Status)
}

func TestDecideBothEditsFailingStillPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	id := submitOne(t, f, 100)

	f.tr.failEdit = true
	f.tr.failClear = true
	f.coord.Decide(ctx, DecisionEvent{
		ActorID:    900,
		CallbackID: "cb1",
		Data:       fmt.Sprintf("approve_%d", id),
	})
	f.mirror.wait(t)

	app, err := f.store.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, app.Status)
}

func TestConcurrentDecisionsLastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SeedAdmin(ctx, 900, "a", "A"))
	require.NoError(t, f.store.SeedAdmin(ctx, 901, "b", "B"))
	id := submitOne(t, f, 100)

	f.coord.Decide(ctx, DecisionEvent{
		ActorID: 900, CallbackID: "cb1", ChatID: 900, MessageID: 1,
		Data: fmt.Sprintf("approve_%d", id),
	})
	f.coord.Decide(ctx, DecisionEvent{
		ActorID: 901, CallbackID: "cb2", ChatID: 901, MessageID: 2,
		Data: fmt.Sprintf("reject_%d", id),
	})
	f.mirror.wait(t)
	f.mirror.wait(t)

	// both operators acknowledged, submitter notified twice, last write wins
	assert.Len(t, f.tr.answered, 2)
	assert.Len(t, f.tr.textsFor(100), 3) // confirmation + two outcomes
	app, err := f.store.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, app.Status)
}

func TestParseDecision(t *testing.T) {
	status, id, ok := parseDecision("approve_42")
	require.True(t, ok)
	assert.Equal(t, models.StatusApproved, status)
	assert.Equal(t, uint(42), id)

	status, id, ok = parseDecision("reject_7")
	require.True(t, ok)
	assert.Equal(t, models.StatusRejected, status)
	assert.Equal(t, uint(7), id)

	_, _, ok = parseDecision("approve_abc")
	assert.False(t, ok)
	_, _, ok = parseDecision("view_app_1")
	assert.False(t, ok)
}
