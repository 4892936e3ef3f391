package cli

import (
	"context"
	"fmt"
)

func (a *App) Stats(ctx context.Context) error {
	day, err := a.ledger.Today(ctx, a.userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d/%d completed, %d missed (%.1f%%)\n", day.Date, day.Completed, day.Total, day.Missed, day.Percent)
	return nil
}

func (a *App) History(ctx context.Context, days int) error {
	hist, err := a.ledger.History(ctx, a.userID, days)
	if err != nil {
		return err
	}
	for _, day := range hist {
		fmt.Fprintf(a.out, "%s: %d/%d completed, %d missed (%.1f%%)\n", day.Date, day.Completed, day.Total, day.Missed, day.Percent)
	}
	return nil
}

func (a *App) Report(ctx context.Context) error {
	where, err := a.reports.Generate(ctx, a.userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Report ready: %s\n", where)
	return nil
}
