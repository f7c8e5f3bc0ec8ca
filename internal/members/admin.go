package members

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/belmonts/belix/internal/repository"
)

var ErrMemberNotFound = errors.New("member not found")

// Admin holds the maintenance operations behind the member CLI.
type Admin struct {
	repo repository.Repository
	now  func() time.Time
}

func NewAdmin(repo repository.Repository) *Admin {
	return &Admin{repo: repo, now: time.Now}
}

func (a *Admin) SetPoints(ctx context.Context, memberID string, points int) error {
	if points < 0 {
		return fmt.Errorf("points must not be negative, got %d", points)
	}
	if err := a.requireMember(ctx, memberID); err != nil {
		return err
	}
	if err := a.repo.InitializePoints(ctx, memberID); err != nil {
		return fmt.Errorf("initialize points: %w", err)
	}
	if err := a.repo.SetPoints(ctx, memberID, points); err != nil {
		return fmt.Errorf("set points: %w", err)
	}
	return nil
}

// SetBirthday stores the birthday, or clears it when value is empty.
func (a *Admin) SetBirthday(ctx context.Context, memberID, value string) error {
	birthday, err := parseBirthday(value)
	if err != nil {
		return err
	}
	if err := a.requireMember(ctx, memberID); err != nil {
		return err
	}
	if err := a.repo.UpdateMemberBirthday(ctx, memberID, birthday); err != nil {
		return fmt.Errorf("update birthday: %w", err)
	}
	return nil
}

// AddBelmontsPoints returns the member's new Belmonts total.
func (a *Admin) AddBelmontsPoints(ctx context.Context, discordUsername string, points int) (int, error) {
	total, err := a.repo.AddBelmontsPointsByDiscordUsername(ctx, discordUsername, points)
	if err != nil {
		return 0, fmt.Errorf("add belmonts points: %w", err)
	}
	if total == nil {
		return 0, fmt.Errorf("%w: %s", ErrMemberNotFound, discordUsername)
	}
	return *total, nil
}

type ActivityReport struct {
	Since      time.Time
	Summary    repository.ActivitySummary
	Activities []repository.Activity
}

// Activity reports the member's activity over the last days days.
func (a *Admin) Activity(ctx context.Context, memberID string, days int) (ActivityReport, error) {
	if days < 1 {
		days = 1
	}
	since := a.now().AddDate(0, 0, -days)
	summary, err := a.repo.SummarizeActivity(ctx, memberID, since)
	if err != nil {
		return ActivityReport{}, fmt.Errorf("summarize activity: %w", err)
	}
	list, err := a.repo.ListActivity(ctx, memberID, &since, nil)
	if err != nil {
		return ActivityReport{}, fmt.Errorf("list activity: %w", err)
	}
	report := ActivityReport{Since: since, Activities: list}
	if summary != nil {
		report.Summary = *summary
	}
	return report, nil
}

func (a *Admin) requireMember(ctx context.Context, memberID string) error {
	m, err := a.repo.GetMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	if m == nil {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	return nil
}
