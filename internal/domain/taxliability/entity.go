package taxliability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
)

// FilingPeriod is a calendar quarter, or a whole year when Quarter is 0.
type FilingPeriod struct {
	Year    int
	Quarter int
}

// PeriodOf returns the quarter containing d.
func PeriodOf(d time.Time) FilingPeriod {
	return FilingPeriod{Year: d.Year(), Quarter: (int(d.Month())-1)/3 + 1}
}

// ParseFilingPeriod accepts "2026" or "2026-Q3".
func ParseFilingPeriod(s string) (FilingPeriod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	yearPart, quarterPart, hasQuarter := strings.Cut(s, "-Q")

	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 1900 || year > 9999 {
		return FilingPeriod{}, ErrInvalidPeriod
	}
	if !hasQuarter {
		return FilingPeriod{Year: year}, nil
	}

	quarter, err := strconv.Atoi(quarterPart)
	if err != nil || quarter < 1 || quarter > 4 {
		return FilingPeriod{}, ErrInvalidPeriod
	}
	return FilingPeriod{Year: year, Quarter: quarter}, nil
}

func (p FilingPeriod) IsYear() bool {
	return p.Quarter == 0
}

func (p FilingPeriod) String() string {
	if p.IsYear() {
		return strconv.Itoa(p.Year)
	}
	return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
}

// Contains reports whether a quarter-level period falls inside p.
func (p FilingPeriod) Contains(q FilingPeriod) bool {
	if p.Year != q.Year {
		return false
	}
	return p.IsYear() || p.Quarter == q.Quarter
}

// Entry is the ledger increment of exactly one committed run.
type Entry struct {
	RunID          string
	CompanyID      string
	Period         FilingPeriod
	PayDate        time.Time
	Federal        money.Cents
	State          money.Cents
	SocialSecurity money.Cents
	Medicare       money.Cents
	StateBreakdown map[string]money.Cents
	RecordedAt     time.Time
}

type Bucket string

const (
	BucketFederal Bucket = "federal"
	BucketState   Bucket = "state"
	BucketFICA    Bucket = "fica"
)

func (b Bucket) IsValid() bool {
	switch b {
	case BucketFederal, BucketState, BucketFICA:
		return true
	}
	return false
}

// Payment is an external remittance recorded against a quarter.
type Payment struct {
	ID         string
	CompanyID  string
	Period     FilingPeriod
	Bucket     Bucket
	Amount     money.Cents
	Reference  string
	PaidAt     time.Time
	RecordedBy string
	CreatedAt  time.Time
}

type Amounts struct {
	Federal money.Cents
	State   money.Cents
	FICA    money.Cents
}

func (a Amounts) Total() money.Cents {
	return a.Federal + a.State + a.FICA
}

type Liabilities struct {
	Period         FilingPeriod
	Federal        money.Cents
	State          money.Cents
	SocialSecurity money.Cents
	Medicare       money.Cents
	StateBreakdown map[string]money.Cents
	RunCount       int
	Paid           Amounts
}

func (l Liabilities) FICA() money.Cents {
	return l.SocialSecurity + l.Medicare
}

func (l Liabilities) Owed() Amounts {
	return Amounts{Federal: l.Federal, State: l.State, FICA: l.FICA()}
}

func (l Liabilities) Outstanding() Amounts {
	owed := l.Owed()
	return Amounts{
		Federal: owed.Federal - l.Paid.Federal,
		State:   owed.State - l.Paid.State,
		FICA:    owed.FICA - l.Paid.FICA,
	}
}

// Aggregate folds ledger entries and payments into the liabilities of a period.
// Entries or payments outside the period are ignored.
func Aggregate(period FilingPeriod, entries []Entry, payments []Payment) Liabilities {
	l := Liabilities{Period: period, StateBreakdown: map[string]money.Cents{}}
	for _, e := range entries {
		if !period.Contains(e.Period) {
			continue
		}
		l.RunCount++
		l.Federal += e.Federal
		l.State += e.State
		l.SocialSecurity += e.SocialSecurity
		l.Medicare += e.Medicare
		for state, amount := range e.StateBreakdown {
			l.StateBreakdown[state] += amount
		}
	}
	for _, p := range payments {
		if !period.Contains(p.Period) {
			continue
		}
		switch p.Bucket {
		case BucketFederal:
			l.Paid.Federal += p.Amount
		case BucketState:
			l.Paid.State += p.Amount
		case BucketFICA:
			l.Paid.FICA += p.Amount
		}
	}
	return l
}
