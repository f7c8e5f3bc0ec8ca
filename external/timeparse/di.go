package timeparse

import (
	"github.com/samber/do/v2"

	"github.com/belmonts/belix/internal/reminder"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (reminder.TimeParser, error) {
		return NewWhenParser(), nil
	})
}
