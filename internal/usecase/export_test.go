package usecase

import "time"

// SetNow overrides the wizard clock for external tests.
func SetNow(u *WizardUseCase, fn func() time.Time) { u.now = fn }
