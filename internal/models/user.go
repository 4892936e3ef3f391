package models

// User is the single profile of an installation. The health fields are
// free-form text as entered at onboarding.
type User struct {
	ID                string `json:"userId"`
	SleepSchedule     string `json:"sleepSchedule"`
	EatingTimes       string `json:"eatingTimes"`
	Weight            string `json:"weight"`
	Height            string `json:"height"`
	BaselineBP        string `json:"baselineBP"`
	DischargeUploaded bool   `json:"dischargeUploaded"`
}

// Profile carries the onboarding answers.
type Profile struct {
	SleepSchedule     string
	EatingTimes       string
	Weight            string
	Height            string
	BaselineBP        string
	DischargeUploaded bool
}

// ProfilePatch lists the profile fields to change. Nil fields are left untouched.
type ProfilePatch struct {
	SleepSchedule     *string
	EatingTimes       *string
	Weight            *string
	Height            *string
	BaselineBP        *string
	DischargeUploaded *bool
}
