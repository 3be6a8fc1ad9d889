package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sportsbook/internal/model"
)

func TestGradeBet_Moneyline(t *testing.T) {
	tests := []struct {
		name      string
		side      string
		homeScore int
		awayScore int
		want      string
	}{
		{"home pick, home wins", model.SideHome, 100, 98, model.ResultWin},
		{"home pick, home loses", model.SideHome, 98, 100, model.ResultLoss},
		{"away pick, home wins", model.SideAway, 100, 98, model.ResultLoss},
		{"away pick, away wins", model.SideAway, 98, 100, model.ResultWin},
		{"tie is a push", model.SideHome, 100, 100, model.ResultPush},
		{"tie is a push for away too", model.SideAway, 3, 3, model.ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeBet(model.MoneylinePick{Team: tt.side}, tt.homeScore, tt.awayScore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeBet_Spread(t *testing.T) {
	tests := []struct {
		name      string
		side      string
		line      float64
		homeScore int
		awayScore int
		want      string
	}{
		// Home favored by 3.5 winning by 2 fails to cover.
		{"home -3.5 wins by 2", model.SideHome, -3.5, 100, 98, model.ResultLoss},
		{"home -3.5 wins by 4", model.SideHome, -3.5, 102, 98, model.ResultWin},
		{"away +3.5 loses by 2", model.SideAway, 3.5, 100, 98, model.ResultWin},
		{"away +3.5 loses by 4", model.SideAway, 3.5, 102, 98, model.ResultLoss},
		// Whole-number line landing exactly is a push.
		{"home -2 wins by 2", model.SideHome, -2, 100, 98, model.ResultPush},
		{"away +2 loses by 2", model.SideAway, 2, 100, 98, model.ResultPush},
		{"underdog home +6.5 loses by 3", model.SideHome, 6.5, 90, 93, model.ResultWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeBet(model.SpreadPick{Team: tt.side, PointLine: tt.line}, tt.homeScore, tt.awayScore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeBet_Total(t *testing.T) {
	tests := []struct {
		name      string
		side      string
		line      float64
		homeScore int
		awayScore int
		want      string
	}{
		{"over 214.5, total 215", model.SideOver, 214.5, 110, 105, model.ResultWin},
		{"over 214.5, total 214", model.SideOver, 214.5, 110, 104, model.ResultLoss},
		{"under 214.5, total 214", model.SideUnder, 214.5, 110, 104, model.ResultWin},
		{"under 214.5, total 215", model.SideUnder, 214.5, 110, 105, model.ResultLoss},
		{"over 215, total exactly 215", model.SideOver, 215, 110, 105, model.ResultPush},
		{"under 215, total exactly 215", model.SideUnder, 215, 110, 105, model.ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeBet(model.TotalPick{OverUnder: tt.side, PointLine: tt.line}, tt.homeScore, tt.awayScore)
			assert.Equal(t, tt.want, got)
		})
	}
}
