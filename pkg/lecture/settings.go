// Package lecture holds the site wide defaults of the lecture and roll call feature and
// validates the admin form that edits them.
package lecture

import "github.com/openolat/olat-gateway/pkg/settings"

// ModuleName is the settings module the lecture defaults are stored under.
const ModuleName = "lecture"

// Property keys.
const (
	keyEnabled                  = "lecture.enabled"
	keyCanOverride              = "lecture.can.override.standard.configuration"
	keyRollCallEnabled          = "lecture.rollcall.default.enabled"
	keyCalculateAttendanceRate  = "lecture.calculate.attendance.rate.default.enabled"
	keyRequiredAttendanceRate   = "lecture.required.attendance.rate.default"
	keyTeacherCalendarSync      = "lecture.teacher.calendar.sync.default.enabled"
	keyCourseCalendarSync       = "lecture.course.calendar.sync.default.enabled"
	keyStatusPartiallyDone      = "lecture.status.partially.done.enabled"
	keyStatusCancelled          = "lecture.status.cancelled.enabled"
	keyReminderEnabled          = "lecture.rollcall.reminder.enabled"
	keyReminderPeriod           = "lecture.rollcall.reminder.period"
	keyAutoClosePeriod          = "lecture.rollcall.autoclose.period"
	keyAuthorizedAbsence        = "lecture.authorized.absence.enabled"
	keyCountAbsenceAsAttendant  = "lecture.count.authorized.absence.attendant"
	keyTeacherCanAuthorize      = "lecture.teacher.can.authorize.absence"
	keyAbsenceDefaultAuthorized = "lecture.absence.default.authorized"
	keyAppealEnabled            = "lecture.absence.appeal.enabled"
	keyAppealPeriod             = "lecture.absence.appeal.period"
)

// Settings is the current set of lecture defaults. Periods are in days.
type Settings struct {
	Enabled                           bool    `json:"enabled"`
	CanOverrideStandardConfig         bool    `json:"canOverrideStandardConfiguration"`
	RollCallDefaultEnabled            bool    `json:"rollCallDefaultEnabled"`
	CalculateAttendanceRate           bool    `json:"calculateAttendanceRate"`
	RequiredAttendanceRate            float64 `json:"requiredAttendanceRate"`
	TeacherCalendarSync               bool    `json:"teacherCalendarSync"`
	CourseCalendarSync                bool    `json:"courseCalendarSync"`
	StatusPartiallyDoneEnabled        bool    `json:"statusPartiallyDoneEnabled"`
	StatusCancelledEnabled            bool    `json:"statusCancelledEnabled"`
	RollCallReminderEnabled           bool    `json:"rollCallReminderEnabled"`
	RollCallReminderPeriod            int     `json:"rollCallReminderPeriod"`
	RollCallAutoClosePeriod           int     `json:"rollCallAutoClosePeriod"`
	AuthorizedAbsenceEnabled          bool    `json:"authorizedAbsenceEnabled"`
	CountAuthorizedAbsenceAsAttendant bool    `json:"countAuthorizedAbsenceAsAttendant"`
	TeacherCanAuthorizeAbsence        bool    `json:"teacherCanAuthorizeAbsence"`
	AbsenceDefaultAuthorized          bool    `json:"absenceDefaultAuthorized"`
	AbsenceAppealEnabled              bool    `json:"absenceAppealEnabled"`
	AbsenceAppealPeriod               int     `json:"absenceAppealPeriod"`
}

// Defaults returns the settings used for keys that were never stored.
func Defaults() Settings {
	return Settings{
		Enabled:                    false,
		CanOverrideStandardConfig:  true,
		RollCallDefaultEnabled:     true,
		RequiredAttendanceRate:     0.8,
		TeacherCalendarSync:        true,
		StatusPartiallyDoneEnabled: true,
		StatusCancelledEnabled:     true,
		RollCallReminderEnabled:    true,
		RollCallReminderPeriod:     2,
		RollCallAutoClosePeriod:    4,
		AuthorizedAbsenceEnabled:   true,
		TeacherCanAuthorizeAbsence: true,
		AbsenceAppealPeriod:        10,
	}
}

func readSettings(p *settings.Properties) Settings {
	d := Defaults()
	return Settings{
		Enabled:                           p.Bool(keyEnabled, d.Enabled),
		CanOverrideStandardConfig:         p.Bool(keyCanOverride, d.CanOverrideStandardConfig),
		RollCallDefaultEnabled:            p.Bool(keyRollCallEnabled, d.RollCallDefaultEnabled),
		CalculateAttendanceRate:           p.Bool(keyCalculateAttendanceRate, d.CalculateAttendanceRate),
		RequiredAttendanceRate:            p.Float(keyRequiredAttendanceRate, d.RequiredAttendanceRate),
		TeacherCalendarSync:               p.Bool(keyTeacherCalendarSync, d.TeacherCalendarSync),
		CourseCalendarSync:                p.Bool(keyCourseCalendarSync, d.CourseCalendarSync),
		StatusPartiallyDoneEnabled:        p.Bool(keyStatusPartiallyDone, d.StatusPartiallyDoneEnabled),
		StatusCancelledEnabled:            p.Bool(keyStatusCancelled, d.StatusCancelledEnabled),
		RollCallReminderEnabled:           p.Bool(keyReminderEnabled, d.RollCallReminderEnabled),
		RollCallReminderPeriod:            p.Int(keyReminderPeriod, d.RollCallReminderPeriod),
		RollCallAutoClosePeriod:           p.Int(keyAutoClosePeriod, d.RollCallAutoClosePeriod),
		AuthorizedAbsenceEnabled:          p.Bool(keyAuthorizedAbsence, d.AuthorizedAbsenceEnabled),
		CountAuthorizedAbsenceAsAttendant: p.Bool(keyCountAbsenceAsAttendant, d.CountAuthorizedAbsenceAsAttendant),
		TeacherCanAuthorizeAbsence:        p.Bool(keyTeacherCanAuthorize, d.TeacherCanAuthorizeAbsence),
		AbsenceDefaultAuthorized:          p.Bool(keyAbsenceDefaultAuthorized, d.AbsenceDefaultAuthorized),
		AbsenceAppealEnabled:              p.Bool(keyAppealEnabled, d.AbsenceAppealEnabled),
		AbsenceAppealPeriod:               p.Int(keyAppealPeriod, d.AbsenceAppealPeriod),
	}
}
