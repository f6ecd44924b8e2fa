package services

import (
	"context"
	"fmt"

	"astromatch/internal/calendar"
	"astromatch/internal/models"
	"astromatch/internal/zodiac"
)

// CalendarService lays members out on the birthday calendar.
type CalendarService struct {
	users *UserService
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(users *UserService) *CalendarService {
	return &CalendarService{users: users}
}

func (s *CalendarService) index(ctx context.Context) (*calendar.Index, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewIndex(users), nil
}

// Month renders the grid for the given month.
func (s *CalendarService) Month(ctx context.Context, year, month int, lang string) (*calendar.Grid, error) {
	key, err := calendar.NewMonthKey(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	grid := idx.Month(key, lang)
	return &grid, nil
}

// Day returns the members born on the month and day of date, in any year.
func (s *CalendarService) Day(ctx context.Context, date string) ([]models.User, error) {
	t, err := zodiac.Parse(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.On(t), nil
}
