package settings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default("2025-01-01")
	require.NoError(t, s.Validate())

	assert.Equal(t, 0.0, s.InitialBankroll)
	assert.Equal(t, 10.0, s.DailyGoal)
	assert.Equal(t, Percent, s.GoalType)
	assert.Equal(t, 50.0, s.StopLoss)
	assert.Equal(t, Currency, s.StopLossType)
	assert.Equal(t, 100.0, s.StopWin)
	assert.Equal(t, Currency, s.StopWinType)
	assert.Equal(t, BaseCurrent, s.CapitalBase)
	assert.Equal(t, "2025-01-01", s.LastRolloverDate)
	assert.Equal(t, 0.92, s.PayoutRatio("BNBUSDT"))
	assert.Equal(t, []string{"ADAUSDT", "BNBUSDT", "LTCUSDT", "XRPUSDT"}, s.AssetNames())
}

func TestParseAmountTypeLegacy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    AmountType
		wantErr bool
	}{
		{"currency", Currency, false},
		{"R$", Currency, false},
		{"%", Percent, false},
		{"Percent", Percent, false},
		{"bananas", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmountType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatchApplyValidates(t *testing.T) {
	t.Parallel()

	base := Default("2025-01-01")

	tests := []struct {
		name   string
		patch  Patch
		errMsg string
	}{
		{"negative goal", Patch{DailyGoal: ptr(-1.0)}, "daily goal must not be negative"},
		{"entry above 100", Patch{EntryPercentage: ptr(101.0)}, "entry percentage must be between 0 and 100"},
		{"negative bankroll", Patch{InitialBankroll: ptr(-5.0)}, "initial bankroll must not be negative"},
		{"bad goal type", Patch{GoalType: ptr(AmountType("euros"))}, "amount type"},
		{"bad base", Patch{CapitalBase: ptr(CapitalBase("peak"))}, "capital base"},
		{"bad asset ratio", Patch{Assets: map[string]float64{"BTC": 1.5}}, "payout ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.patch.Apply(base)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, base, got)
		})
	}
}

func TestPatchApplyNormalizesLegacy(t *testing.T) {
	t.Parallel()

	got, err := Patch{
		GoalType:     ptr(AmountType("%")),
		StopLossType: ptr(AmountType("R$")),
		DailyGoal:    ptr(5.0),
	}.Apply(Default("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, Percent, got.GoalType)
	assert.Equal(t, Currency, got.StopLossType)
	assert.Equal(t, 5.0, got.DailyGoal)
}

func TestStoreApplyIsAtomic(t *testing.T) {
	t.Parallel()

	st, err := NewStore(Default("2025-01-01"))
	require.NoError(t, err)

	_, err = st.Apply(Patch{DailyGoal: ptr(20.0), StopWin: ptr(-1.0)})
	require.Error(t, err)
	assert.Equal(t, 10.0, st.Get().DailyGoal, "valid fields of a rejected patch are not applied")

	_, err = st.Apply(Patch{DailyGoal: ptr(20.0)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, st.Get().DailyGoal)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	st, err := NewStore(Default("2025-01-01"))
	require.NoError(t, err)

	s := st.Get()
	s.Assets["HACK"] = 1
	assert.NotContains(t, st.Get().Assets, "HACK")
}

func TestStoreAssets(t *testing.T) {
	t.Parallel()

	st, err := NewStore(Default("2025-01-01"))
	require.NoError(t, err)

	require.NoError(t, st.SetAsset("BTCUSDT", 0.85))
	assert.Equal(t, 0.85, st.Get().PayoutRatio("BTCUSDT"))

	assert.ErrorIs(t, st.SetAsset(" ", 0.5), ErrInvalid)
	assert.ErrorIs(t, st.SetAsset("ETH", 0), ErrInvalid)
	assert.ErrorIs(t, st.SetAsset("ETH", 1.01), ErrInvalid)

	assert.ErrorIs(t, st.RenameAsset("BTCUSDT", "ADAUSDT", 0.8), ErrInvalid)
	require.NoError(t, st.RenameAsset("BTCUSDT", "BTCUSD", 0.8))
	assert.NotContains(t, st.Get().Assets, "BTCUSDT")
	assert.Equal(t, 0.8, st.Get().PayoutRatio("BTCUSD"))

	require.NoError(t, st.RemoveAsset("BTCUSD"))
	assert.ErrorIs(t, st.RemoveAsset("BTCUSD"), ErrInvalid)
	assert.Equal(t, 0.0, st.Get().PayoutRatio("BTCUSD"))
}

func TestStoreFoldAndReset(t *testing.T) {
	t.Parallel()

	st, err := NewStore(Default("2025-01-01"))
	require.NoError(t, err)

	s, err := st.Fold("2025-01-02", -40, -40)
	require.NoError(t, err)
	assert.Equal(t, -40.0, s.InitialBankroll, "rollover may leave a negative bankroll")
	assert.Equal(t, "2025-01-02", s.LastRolloverDate)

	s, err = st.Rebase(150, 50)
	require.NoError(t, err)
	assert.Equal(t, 150.0, s.InitialBankroll)
	assert.Equal(t, 50.0, s.RolledOverTotal)
	assert.Equal(t, "2025-01-02", s.LastRolloverDate, "rebase keeps the rollover date")

	_, err = st.Rebase(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalid)

	s = st.Reset("2025-01-03")
	assert.Equal(t, 0.0, s.InitialBankroll)
	assert.Equal(t, 0.0, s.RolledOverTotal)
	assert.Equal(t, "2025-01-03", s.LastRolloverDate)
}
