package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rxkeeper/internal/models"
)

func (a *App) Onboard(ctx context.Context) error {
	var p models.Profile
	var err error

	if p.SleepSchedule, err = GetSimpleText(a.reader, "Sleep schedule (e.g. 22:00-06:00)", a.out); err != nil {
		return err
	}
	if p.EatingTimes, err = GetSimpleText(a.reader, "Eating times (e.g. 08:00, 13:00, 19:00)", a.out); err != nil {
		return err
	}
	if p.Weight, err = GetSimpleText(a.reader, "Weight", a.out); err != nil {
		return err
	}
	if p.Height, err = GetSimpleText(a.reader, "Height", a.out); err != nil {
		return err
	}
	if p.BaselineBP, err = GetSimpleText(a.reader, "Baseline blood pressure", a.out); err != nil {
		return err
	}
	if p.DischargeUploaded, err = GetYesNo(a.reader, "Discharge papers uploaded?", a.out); err != nil {
		return err
	}

	u, err := a.users.Onboard(ctx, p)
	if err != nil {
		return err
	}
	a.userID = u.ID
	fmt.Fprintln(a.out, "Profile saved.")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u, err := a.users.Get(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Press Enter to keep the current value.")
	var p models.ProfilePatch
	if p.SleepSchedule, err = GetOptionalText(a.reader, "Sleep schedule", u.SleepSchedule, a.out); err != nil {
		return err
	}
	if p.EatingTimes, err = GetOptionalText(a.reader, "Eating times", u.EatingTimes, a.out); err != nil {
		return err
	}
	if p.Weight, err = GetOptionalText(a.reader, "Weight", u.Weight, a.out); err != nil {
		return err
	}
	if p.Height, err = GetOptionalText(a.reader, "Height", u.Height, a.out); err != nil {
		return err
	}
	if p.BaselineBP, err = GetOptionalText(a.reader, "Baseline blood pressure", u.BaselineBP, a.out); err != nil {
		return err
	}

	if _, err := a.users.Update(ctx, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}
