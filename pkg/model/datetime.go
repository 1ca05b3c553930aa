package model

// LimitKind distinguishes absolute limits from offset limits.
type LimitKind string

const (
	LimitSimple  LimitKind = "simple"
	LimitComplex LimitKind = "complex"
)

// OffsetSign is the direction of a date offset.
type OffsetSign string

const (
	OffsetPlus  OffsetSign = "plus"
	OffsetMinus OffsetSign = "minus"
)

// OffsetUnit tells which components of an offset are meaningful.
type OffsetUnit string

const (
	OffsetDate     OffsetUnit = "date"
	OffsetTime     OffsetUnit = "time"
	OffsetDateTime OffsetUnit = "dateTime"
)

const (
	minutesPerHour  = 60
	minutesPerDay   = 24 * minutesPerHour
	minutesPerMonth = 30 * minutesPerDay
	minutesPerYear  = 365 * minutesPerDay
)

// DateOffset shifts a base date or time value.
type DateOffset struct {
	Sign    OffsetSign `json:"operator"`
	Unit    OffsetUnit `json:"type"`
	Years   int        `json:"years,omitempty"`
	Months  int        `json:"months,omitempty"`
	Days    int        `json:"days,omitempty"`
	Hours   int        `json:"hours,omitempty"`
	Minutes int        `json:"minutes,omitempty"`
}

// TotalMinutes flattens the offset into minutes. Years count as 365 days and
// months as 30 days.
func (o DateOffset) TotalMinutes() int {
	total := o.Years*minutesPerYear + o.Months*minutesPerMonth + o.Days*minutesPerDay
	return total + o.Hours*minutesPerHour + o.Minutes
}

// OffsetFromMinutes rebuilds an offset from a minute count: a dateTime
// offset when at least one full day is present, otherwise a time offset.
func OffsetFromMinutes(sign OffsetSign, minutes int) DateOffset {
	if minutes < 0 {
		minutes = -minutes
	}
	days := minutes / minutesPerDay
	rest := minutes % minutesPerDay
	off := DateOffset{
		Sign:    sign,
		Hours:   rest / minutesPerHour,
		Minutes: rest % minutesPerHour,
	}
	if days > 0 {
		off.Unit = OffsetDateTime
		off.Days = days
		return off
	}
	off.Unit = OffsetTime
	return off
}

// DateLimit bounds a date or time field. Value is an absolute value or a
// base such as "current"; Offset is set for complex limits.
type DateLimit struct {
	Kind      LimitKind   `json:"type"`
	Value     string      `json:"value"`
	Offset    *DateOffset `json:"operator,omitempty"`
	Exclusive bool        `json:"isExclusive,omitempty"`
}
