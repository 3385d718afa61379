package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, SignalNone, Resolve(false, false))
	assert.Equal(t, SignalPaymentGrace, Resolve(true, false))
	assert.Equal(t, SignalPendingRegistration, Resolve(false, true))
	assert.Equal(t, SignalPaymentGrace, Resolve(true, true))

	assert.False(t, SignalNone.Active())
	assert.True(t, SignalPaymentGrace.Active())
	assert.True(t, SignalPendingRegistration.Active())
}

func TestDecide(t *testing.T) {
	free := &models.User{ID: "1", Plan: models.PlanFree}
	standard := &models.User{ID: "2", Plan: models.PlanStandard}
	enterprise := &models.User{ID: "3", Plan: models.PlanEnterprise}

	tests := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "auth loading",
			in:   Input{AuthLoading: true, RequireSubscription: true},
			want: DecisionLoading,
		},
		{
			name: "checking pending registration",
			in:   Input{CheckingPending: true, Account: Account{User: standard, HasActiveSubscription: true}},
			want: DecisionLoading,
		},
		{
			name: "no user, no grace",
			in:   Input{RequireSubscription: true},
			want: DecisionRedirectLogin,
		},
		{
			name: "no user, no grace, subscription not required",
			in:   Input{},
			want: DecisionRedirectLogin,
		},
		{
			name: "free user without subscription",
			in:   Input{Account: Account{User: free}, RequireSubscription: true},
			want: DecisionRedirectUpgrade,
		},
		{
			name: "no user, payment grace",
			in:   Input{Signal: SignalPaymentGrace, RequireSubscription: true},
			want: DecisionActivating,
		},
		{
			name: "no user, pending registration",
			in:   Input{Signal: SignalPendingRegistration, RequireSubscription: true},
			want: DecisionActivating,
		},
		{
			name: "enterprise plan passes without subscription",
			in:   Input{Account: Account{User: enterprise}, RequireSubscription: true},
			want: DecisionRender,
		},
		{
			name: "free user covered by grace",
			in:   Input{Account: Account{User: free}, Signal: SignalPaymentGrace, RequireSubscription: true},
			want: DecisionRender,
		},
		{
			name: "free user, subscription not required",
			in:   Input{Account: Account{User: free}},
			want: DecisionRender,
		},
		{
			name: "subscribed user",
			in:   Input{Account: Account{User: standard, HasActiveSubscription: true}, RequireSubscription: true},
			want: DecisionRender,
		},
		{
			name: "standard plan but lapsed subscription",
			in:   Input{Account: Account{User: standard}, RequireSubscription: true},
			want: DecisionRedirectUpgrade,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.in))
			// детерминированность
			assert.Equal(t, Decide(tt.in), Decide(tt.in))
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "loading", DecisionLoading.String())
	assert.Equal(t, "render", DecisionRender.String())
	assert.Equal(t, "redirect_login", DecisionRedirectLogin.String())
	assert.Equal(t, "redirect_upgrade", DecisionRedirectUpgrade.String())
	assert.Equal(t, "activating", DecisionActivating.String())
	assert.Equal(t, "unknown", Decision(42).String())

	text, err := DecisionActivating.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "activating", string(text))
}

func TestDecision_UnmarshalText(t *testing.T) {
	var d Decision
	assert.NoError(t, d.UnmarshalText([]byte("redirect_upgrade")))
	assert.Equal(t, DecisionRedirectUpgrade, d)
	assert.Error(t, d.UnmarshalText([]byte("maybe")))
}
