package jsonstore

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/questions"
	"github.com/belmonts/belix/internal/reminder"
	"github.com/belmonts/belix/internal/terminology"
)

const (
	TerminologiesFile = "terminologies.json"
	QuestionsFile     = "dailyQuestion.json"
	RemindersFile     = "reminders.json"
	RookiesFile       = "rookiesData.json"
	SyncStateFile     = "memberSyncState.json"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (terminology.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFile(filepath.Join(cfg.DataDir, TerminologiesFile), func() terminology.Document {
			return terminology.Document{Terminologies: []terminology.Term{}}
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (questions.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFile(filepath.Join(cfg.DataDir, QuestionsFile), func() questions.Document {
			return questions.Document{}
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (reminder.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFile(filepath.Join(cfg.DataDir, RemindersFile), func() reminder.List {
			return reminder.List{}
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (members.RookieStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFile(filepath.Join(cfg.DataDir, RookiesFile), func() members.RookieData {
			return members.RookieData{Rookies: []members.Rookie{}}
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (members.SyncStateStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFile(filepath.Join(cfg.DataDir, SyncStateFile), func() members.SyncState {
			return members.SyncState{}
		}), nil
	})
}
