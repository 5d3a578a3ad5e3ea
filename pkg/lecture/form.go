package lecture

import (
	"math"
	"strconv"
	"strings"

	"github.com/openolat/olat-gateway/pkg/settings"
)

// Error keys reported by Form.Validate.
const (
	ErrKeyMandatory       = settings.ErrKeyMandatory
	ErrKeyNoInteger       = settings.ErrKeyNoInteger
	ErrKeyIntegerBetween  = settings.ErrKeyIntegerBetween
	ErrKeyIntegerPositive = settings.ErrKeyIntegerPositive
)

// Form field names used in FieldError.Field.
const (
	FieldAttendanceRate  = "attendanceRate"
	FieldAutoClosePeriod = "autoClosePeriod"
	FieldReminderPeriod  = "reminderPeriod"
	FieldAppealPeriod    = "appealPeriod"
)

type (
	FieldError  = settings.FieldError
	FieldErrors = settings.FieldErrors
)

// Form is the admin input. Numbers are kept as entered so they can be validated.
// AttendanceRate is a percentage.
type Form struct {
	Enabled                           bool   `json:"enabled"`
	CanOverrideStandardConfig         bool   `json:"canOverrideStandardConfiguration"`
	RollCallDefaultEnabled            bool   `json:"rollCallDefaultEnabled"`
	CalculateAttendanceRate           bool   `json:"calculateAttendanceRate"`
	AttendanceRate                    string `json:"attendanceRate"`
	TeacherCalendarSync               bool   `json:"teacherCalendarSync"`
	CourseCalendarSync                bool   `json:"courseCalendarSync"`
	StatusPartiallyDoneEnabled        bool   `json:"statusPartiallyDoneEnabled"`
	StatusCancelledEnabled            bool   `json:"statusCancelledEnabled"`
	RollCallReminderEnabled           bool   `json:"rollCallReminderEnabled"`
	RollCallReminderPeriod            string `json:"rollCallReminderPeriod"`
	RollCallAutoClosePeriod           string `json:"rollCallAutoClosePeriod"`
	AuthorizedAbsenceEnabled          bool   `json:"authorizedAbsenceEnabled"`
	CountAuthorizedAbsenceAsAttendant bool   `json:"countAuthorizedAbsenceAsAttendant"`
	TeacherCanAuthorizeAbsence        bool   `json:"teacherCanAuthorizeAbsence"`
	AbsenceDefaultAuthorized          bool   `json:"absenceDefaultAuthorized"`
	AbsenceAppealEnabled              bool   `json:"absenceAppealEnabled"`
	AbsenceAppealPeriod               string `json:"absenceAppealPeriod"`
}

// FormFromSettings fills a form with the current settings. Periods that are not
// positive are left blank.
func FormFromSettings(s Settings) Form {
	return Form{
		Enabled:                           s.Enabled,
		CanOverrideStandardConfig:         s.CanOverrideStandardConfig,
		RollCallDefaultEnabled:            s.RollCallDefaultEnabled,
		CalculateAttendanceRate:           s.CalculateAttendanceRate,
		AttendanceRate:                    strconv.FormatInt(int64(math.Round(s.RequiredAttendanceRate*100)), 10),
		TeacherCalendarSync:               s.TeacherCalendarSync,
		CourseCalendarSync:                s.CourseCalendarSync,
		StatusPartiallyDoneEnabled:        s.StatusPartiallyDoneEnabled,
		StatusCancelledEnabled:            s.StatusCancelledEnabled,
		RollCallReminderEnabled:           s.RollCallReminderEnabled,
		RollCallReminderPeriod:            positiveOrBlank(s.RollCallReminderPeriod),
		RollCallAutoClosePeriod:           positiveOrBlank(s.RollCallAutoClosePeriod),
		AuthorizedAbsenceEnabled:          s.AuthorizedAbsenceEnabled,
		CountAuthorizedAbsenceAsAttendant: s.CountAuthorizedAbsenceAsAttendant,
		TeacherCanAuthorizeAbsence:        s.TeacherCanAuthorizeAbsence,
		AbsenceDefaultAuthorized:          s.AbsenceDefaultAuthorized,
		AbsenceAppealEnabled:              s.AbsenceAppealEnabled,
		AbsenceAppealPeriod:               positiveOrBlank(s.AbsenceAppealPeriod),
	}
}

func positiveOrBlank(n int) string {
	if n > 0 {
		return strconv.Itoa(n)
	}
	return ""
}

// Validate checks the numeric fields. A disabled form has nothing to validate since
// only the enabled flag is saved. Periods are only checked when their toggle is on.
func (f Form) Validate() FieldErrors {
	if !f.Enabled {
		return nil
	}
	var errs FieldErrors

	rate := strings.TrimSpace(f.AttendanceRate)
	if rate == "" {
		errs = append(errs, FieldError{Field: FieldAttendanceRate, Key: ErrKeyMandatory})
	} else if val, err := strconv.Atoi(rate); err != nil {
		errs = append(errs, FieldError{Field: FieldAttendanceRate, Key: ErrKeyNoInteger})
	} else if val < 1 || val > 100 {
		errs = append(errs, FieldError{Field: FieldAttendanceRate, Key: ErrKeyIntegerBetween, Args: []string{"1", "100"}})
	}

	errs = validatePositive(errs, FieldAutoClosePeriod, f.RollCallAutoClosePeriod)
	if f.AbsenceAppealEnabled {
		errs = validatePositive(errs, FieldAppealPeriod, f.AbsenceAppealPeriod)
	}
	if f.RollCallReminderEnabled {
		errs = validatePositive(errs, FieldReminderPeriod, f.RollCallReminderPeriod)
	}
	return errs
}

func validatePositive(errs FieldErrors, field, value string) FieldErrors {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errs, FieldError{Field: field, Key: ErrKeyMandatory})
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return append(errs, FieldError{Field: field, Key: ErrKeyNoInteger})
	}
	if val <= 0 {
		return append(errs, FieldError{Field: field, Key: ErrKeyIntegerPositive})
	}
	return errs
}

// values converts a validated form into the properties to store.
func (f Form) values() map[string]string {
	if !f.Enabled {
		return map[string]string{keyEnabled: "false"}
	}
	b := strconv.FormatBool
	values := map[string]string{
		keyEnabled:                  "true",
		keyCanOverride:              b(f.CanOverrideStandardConfig),
		keyRollCallEnabled:          b(f.RollCallDefaultEnabled),
		keyAutoClosePeriod:          strings.TrimSpace(f.RollCallAutoClosePeriod),
		keyStatusPartiallyDone:      b(f.StatusPartiallyDoneEnabled),
		keyStatusCancelled:          b(f.StatusCancelledEnabled),
		keyAuthorizedAbsence:        b(f.AuthorizedAbsenceEnabled),
		keyCountAbsenceAsAttendant:  b(f.AuthorizedAbsenceEnabled && f.CountAuthorizedAbsenceAsAttendant),
		keyTeacherCanAuthorize:      b(f.AuthorizedAbsenceEnabled && f.TeacherCanAuthorizeAbsence),
		keyAppealEnabled:            b(f.AbsenceAppealEnabled),
		keyAbsenceDefaultAuthorized: b(f.AbsenceDefaultAuthorized),
		keyReminderEnabled:          b(f.RollCallReminderEnabled),
		keyCalculateAttendanceRate:  b(f.CalculateAttendanceRate),
		keyTeacherCalendarSync:      b(f.TeacherCalendarSync),
		keyCourseCalendarSync:       b(f.CourseCalendarSync),
	}
	if f.AbsenceAppealEnabled {
		values[keyAppealPeriod] = strings.TrimSpace(f.AbsenceAppealPeriod)
	}
	if f.RollCallReminderEnabled {
		values[keyReminderPeriod] = strings.TrimSpace(f.RollCallReminderPeriod)
	}
	if rate := strings.TrimSpace(f.AttendanceRate); rate != "" {
		if percent, err := strconv.ParseFloat(rate, 64); err == nil {
			values[keyRequiredAttendanceRate] = strconv.FormatFloat(percent/100, 'f', -1, 64)
		}
	}
	return values
}
