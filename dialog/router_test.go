package dialog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/catalog"
	"github.com/roastery/loyaltybot/dialog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/notify"
	"github.com/roastery/loyaltybot/rewards"
	"github.com/roastery/loyaltybot/store"
)

func newTestRouter(t *testing.T, locale string) *dialog.Router {
	t.Helper()
	mem := store.NewMemory()
	engine := dialog.NewEngine(
		loyalty.NewRegistry(mem, nil),
		loyalty.NewLedger(mem, nil),
		mem,
		notify.NewRecorder(),
		catalog.New(locale),
		rewards.DefaultRedemption,
		nil,
	)
	return dialog.NewRouter(engine)
}

// =============================================================================
// INTENT RESOLUTION TESTS
// =============================================================================

func TestRouter_ResolveIntent_Canonical(t *testing.T) {
	r := newTestRouter(t, "en")

	cases := []struct {
		text string
		want dialog.Intent
	}{
		{"/start", dialog.IntentStart},
		{"start", dialog.IntentStart},
		{"  /HELP  ", dialog.IntentHelp},
		{"/register", dialog.IntentRegister},
		{"/balance", dialog.IntentBalance},
		{"/addpoints", dialog.IntentAddPoints},
		{"/redeem", dialog.IntentRedeem},
		{"/addemployee", dialog.IntentAddEmployee},
		{"/removeemployee", dialog.IntentRemoveEmployee},
		{"/cancel", dialog.IntentCancel},
		{"/frobnicate", dialog.IntentUnknown},
		{"", dialog.IntentUnknown},
		{"   ", dialog.IntentUnknown},
	}

	for _, tc := range cases {
		got, _ := r.ResolveIntent(tc.text)
		assert.Equal(t, tc.want, got, "text=%q", tc.text)
	}
}

func TestRouter_ResolveIntent_Args(t *testing.T) {
	r := newTestRouter(t, "en")

	intent, args := r.ResolveIntent("/addemployee +79990000001")
	assert.Equal(t, dialog.IntentAddEmployee, intent)
	assert.Equal(t, []string{"+79990000001"}, args)

	intent, args = r.ResolveIntent("/removeemployee 7999 000")
	assert.Equal(t, dialog.IntentRemoveEmployee, intent)
	assert.Equal(t, []string{"7999", "000"}, args)
}

func TestRouter_ResolveIntent_RussianAliases(t *testing.T) {
	// The ru catalog registers localized aliases; the canonical English
	// names keep working alongside them.

	r := newTestRouter(t, "ru")

	cases := []struct {
		text string
		want dialog.Intent
	}{
		{"старт", dialog.IntentStart},
		{"помощь", dialog.IntentHelp},
		{"регистрация", dialog.IntentRegister},
		{"баланс", dialog.IntentBalance},
		{"добавитьбаллы", dialog.IntentAddPoints},
		{"списать", dialog.IntentRedeem},
		{"добавитьсотрудника", dialog.IntentAddEmployee},
		{"удалитьсотрудника", dialog.IntentRemoveEmployee},
		{"отмена", dialog.IntentCancel},
		{"/register", dialog.IntentRegister},
	}

	for _, tc := range cases {
		got, _ := r.ResolveIntent(tc.text)
		assert.Equal(t, tc.want, got, "text=%q", tc.text)
	}
}

func TestRouter_RussianAliases_NotInEnglishLocale(t *testing.T) {
	r := newTestRouter(t, "en")

	got, _ := r.ResolveIntent("регистрация")
	assert.Equal(t, dialog.IntentUnknown, got)
}

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestRouter_Dispatch_RussianRegistration(t *testing.T) {
	// End to end in the ru locale: localized alias opens the dialog and
	// the confirmation comes back in Russian.

	mem := store.NewMemory()
	rec := notify.NewRecorder()
	engine := dialog.NewEngine(
		loyalty.NewRegistry(mem, nil),
		loyalty.NewLedger(mem, nil),
		mem,
		rec,
		catalog.New("ru"),
		rewards.DefaultRedemption,
		nil,
	)
	router := dialog.NewRouter(engine)
	ctx := context.Background()

	router.Dispatch(ctx, "chat-1", "регистрация")
	assert.Equal(t, dialog.StateRegisterAwaitPhone, engine.StateOf("chat-1"))

	router.Dispatch(ctx, "chat-1", "+79990000001")

	msgs := rec.SentTo("chat-1")
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "Вы успешно зарегистрированы!", msgs[1])

	acct, err := mem.ByPhone(ctx, "+79990000001")
	require.NoError(t, err)
	assert.Equal(t, loyalty.ChatID("chat-1"), acct.ChatID)
}
