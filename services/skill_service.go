// services/skill_service.go - Skill points per user
package services

import (
	"context"
	"log/slog"

	"smartbeans/level"
)

// SkillService computes skill points from solved tasks and keeps the
// users' total score current.
type SkillService struct {
	calc   *level.Calculator
	users  *UserService
	logger *slog.Logger
}

func NewSkillService(calc *level.Calculator, users *UserService, logger *slog.Logger) *SkillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkillService{calc: calc, users: users, logger: logger}
}

// UserPoints returns the user's points for the solved task ids and stores
// the total as the user's score.
func (s *SkillService) UserPoints(ctx context.Context, username string, solved []int) (level.Points, error) {
	points := s.calc.ForSolved(solved)
	if s.users != nil {
		if err := s.users.SetTotalScore(ctx, username, points[level.Total]); err != nil {
			s.logger.Warn("updating total score failed",
				slog.String("user", username),
				slog.Any("error", err))
		}
	}
	return points, nil
}

// MaxPoints returns the points of a user who solved every task.
func (s *SkillService) MaxPoints(context.Context) (level.Points, error) {
	return s.calc.Max(), nil
}
