package service

import (
	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
)

// gradeBet grades a pick against the final score. Lines captured at
// placement are applied here, not the event's current lines: a bet is
// graded at the price it was taken.
//
// Spread grading adds the captured line to the picked side's score only;
// equal adjusted scores push. Total grading compares the combined score to
// the captured line; landing exactly on the line pushes.
func gradeBet(pick model.Pick, homeScore, awayScore int) string {
	switch p := pick.(type) {
	case model.MoneylinePick:
		if homeScore == awayScore {
			return model.ResultPush
		}
		winner := model.SideAway
		if homeScore > awayScore {
			winner = model.SideHome
		}
		if p.Team == winner {
			return model.ResultWin
		}
		return model.ResultLoss

	case model.SpreadPick:
		adjHome, adjAway := float64(homeScore), float64(awayScore)
		if p.Team == model.SideHome {
			adjHome += p.PointLine
		} else {
			adjAway += p.PointLine
		}
		if adjHome == adjAway {
			return model.ResultPush
		}
		winner := model.SideAway
		if adjHome > adjAway {
			winner = model.SideHome
		}
		if p.Team == winner {
			return model.ResultWin
		}
		return model.ResultLoss

	case model.TotalPick:
		total := float64(homeScore + awayScore)
		if total == p.PointLine {
			return model.ResultPush
		}
		winner := model.SideUnder
		if total > p.PointLine {
			winner = model.SideOver
		}
		if p.OverUnder == winner {
			return model.ResultWin
		}
		return model.ResultLoss

	default:
		// Unreachable for picks built through model.NewPick. Grade as a
		// loss so no money moves on corrupted data, and say so loudly.
		log.Error().
			Str("market", pick.Market()).
			Str("side", pick.Side()).
			Msg("unrecognized pick variant, grading as loss")
		return model.ResultLoss
	}
}
