package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/huangang/venturelink/internal/utils"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	isoDate         = "2006-01-02"
	dashboardMonths = 6
)

type MonthlyMetric struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// FounderDashboard holds the KPIs derived from the startup's accounting data.
type FounderDashboard struct {
	CashRunwayMonths         int                `json:"cashRunwayMonths"`
	RevenueGrowth            []MonthlyMetric    `json:"revenueGrowth"`
	ExpenseAnalysis          []MonthlyMetric    `json:"expenseAnalysis"`
	BurnRateAnalysis         []MonthlyMetric    `json:"burnRateAnalysis"`
	KeyPerformanceIndicators map[string]float64 `json:"keyPerformanceIndicators"`
	TeamSize                 int                `json:"teamSize"`
}

// FounderDashboardService turns Zoho Books documents into dashboard KPIs.
type FounderDashboardService struct {
	db        *gorm.DB
	zoho      *ZohoClient
	marketing map[string]struct{}
	now       func() time.Time
}

func NewFounderDashboardService(db *gorm.DB, zoho *ZohoClient, marketingAccounts []string) *FounderDashboardService {
	marketing := make(map[string]struct{}, len(marketingAccounts))
	for _, a := range marketingAccounts {
		marketing[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	return &FounderDashboardService{db: db, zoho: zoho, marketing: marketing, now: time.Now}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (s *FounderDashboardService) GetDashboard(ctx context.Context, founderUserID string) (*FounderDashboard, error) {
	startup, err := startupForFounder(s.db.WithContext(ctx), founderUserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	current := monthStart(now)
	windowStart := current.AddDate(0, -(dashboardMonths - 1), 0)
	windowEnd := current.AddDate(0, 1, -1)
	prevStart := current.AddDate(0, -1, 0)
	prevEnd := current.AddDate(0, 0, -1)
	from, to := windowStart.Format(isoDate), windowEnd.Format(isoDate)

	// resolve credentials once so the parallel fetches below reuse them
	if _, err := s.zoho.Acquire(ctx, startup.ID); err != nil {
		return nil, err
	}

	var sales, expenses, banks, contacts, invoices, pnl, employees gjson.Result
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(dst *gjson.Result, fn func(context.Context) (gjson.Result, error)) {
		g.Go(func() error {
			res, err := fn(gctx)
			*dst = res
			return err
		})
	}
	fetch(&sales, func(c context.Context) (gjson.Result, error) { return s.zoho.SalesOrders(c, startup.ID, from, to) })
	fetch(&expenses, func(c context.Context) (gjson.Result, error) { return s.zoho.Expenses(c, startup.ID, from, to) })
	fetch(&banks, func(c context.Context) (gjson.Result, error) { return s.zoho.BankAccounts(c, startup.ID) })
	fetch(&contacts, func(c context.Context) (gjson.Result, error) { return s.zoho.Contacts(c, startup.ID) })
	fetch(&invoices, func(c context.Context) (gjson.Result, error) { return s.zoho.Invoices(c, startup.ID) })
	fetch(&pnl, func(c context.Context) (gjson.Result, error) { return s.zoho.ProfitAndLoss(c, startup.ID, from, to) })
	fetch(&employees, func(c context.Context) (gjson.Result, error) { return s.zoho.Employees(c, startup.ID) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenueByMonth := sumByMonth(sales.Get("salesorders"), "total")
	expenseByMonth := sumByMonth(expenses.Get("expenses"), "total")

	dash := &FounderDashboard{
		RevenueGrowth:    make([]MonthlyMetric, 0, dashboardMonths),
		ExpenseAnalysis:  make([]MonthlyMetric, 0, dashboardMonths),
		BurnRateAnalysis: make([]MonthlyMetric, 0, dashboardMonths),
	}
	for i := 0; i < dashboardMonths; i++ {
		key := windowStart.AddDate(0, i, 0).Format("Jan")
		revenue, expense := revenueByMonth[key], expenseByMonth[key]
		dash.RevenueGrowth = append(dash.RevenueGrowth, MonthlyMetric{Month: key, Value: revenue})
		dash.ExpenseAnalysis = append(dash.ExpenseAnalysis, MonthlyMetric{Month: key, Value: expense})
		dash.BurnRateAnalysis = append(dash.BurnRateAnalysis, MonthlyMetric{Month: key, Value: math.Max(0, expense-revenue)})
	}

	latestExpense := dash.ExpenseAnalysis[len(dash.ExpenseAnalysis)-1].Value
	dash.CashRunwayMonths = cashRunway(bankBalance(banks), latestExpense)
	dash.TeamSize = len(employees.Get("employees").Array())

	customers := customerContacts(contacts)
	dash.KeyPerformanceIndicators = map[string]float64{
		"CAC":   utils.Round2(s.cac(expenses.Get("expenses"), customers, prevStart, prevEnd)),
		"LTV":   utils.Round2(ltv(invoices, pnl, customers, now)),
		"Churn": utils.Round2(churnRate(customers, prevStart)),
	}
	return dash, nil
}

// sumByMonth adds field of each dated entry under its English short month.
func sumByMonth(entries gjson.Result, field string) map[string]float64 {
	out := map[string]float64{}
	entries.ForEach(func(_, e gjson.Result) bool {
		d, err := time.Parse(isoDate, e.Get("date").String())
		if err != nil || !e.Get(field).Exists() {
			return true
		}
		out[d.Format("Jan")] += e.Get(field).Float()
		return true
	})
	return out
}

func bankBalance(banks gjson.Result) float64 {
	var total float64
	for _, b := range banks.Get("bankaccounts.#.balance").Array() {
		total += b.Float()
	}
	return total
}

// cashRunway is the number of whole months the balance covers at the
// latest monthly expense, 0 when nothing was spent.
func cashRunway(balance, monthlyExpense float64) int {
	if monthlyExpense <= 0 {
		return 0
	}
	return int(math.Floor(balance / monthlyExpense))
}

type customer struct {
	id      string
	created time.Time
	active  bool
}

func customerContacts(contacts gjson.Result) []customer {
	var out []customer
	contacts.Get("contacts").ForEach(func(_, c gjson.Result) bool {
		if !strings.EqualFold(c.Get("contact_type").String(), "customer") {
			return true
		}
		raw := c.Get("created_time").String()
		if len(raw) < len(isoDate) {
			return true
		}
		created, err := time.Parse(isoDate, raw[:len(isoDate)])
		if err != nil {
			return true
		}
		status := c.Get("status").String()
		out = append(out, customer{
			id:      c.Get("contact_id").String(),
			created: created,
			active:  status == "" || strings.EqualFold(status, "active"),
		})
		return true
	})
	return out
}

func sameDayOrBefore(a, b time.Time) bool {
	return !a.After(time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, a.Location()))
}

// cac divides marketing spend in [start, end] by customers created then.
func (s *FounderDashboardService) cac(expenses gjson.Result, customers []customer, start, end time.Time) float64 {
	var spend float64
	expenses.ForEach(func(_, e gjson.Result) bool {
		if _, ok := s.marketing[strings.ToLower(e.Get("account_name").String())]; !ok {
			return true
		}
		d, err := time.Parse(isoDate, e.Get("date").String())
		if err != nil || d.Before(start) || !sameDayOrBefore(d, end) {
			return true
		}
		spend += e.Get("total").Float()
		return true
	})

	var acquired int
	for _, c := range customers {
		if !c.created.Before(start) && sameDayOrBefore(c.created, end) {
			acquired++
		}
	}
	if acquired == 0 {
		return 0
	}
	return spend / float64(acquired)
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// ltv = revenue per customer × gross margin × average lifespan in months.
func ltv(invoices, pnl gjson.Result, customers []customer, now time.Time) float64 {
	var revenue float64
	invoices.Get("invoices").ForEach(func(_, inv gjson.Result) bool {
		if strings.EqualFold(inv.Get("status").String(), "paid") {
			revenue += inv.Get("total").Float()
		}
		return true
	})
	if revenue <= 0 || len(customers) == 0 {
		return 0
	}

	var grossProfit float64
	pnl.Get("profit_and_loss").ForEach(func(_, sec gjson.Result) bool {
		if strings.EqualFold(sec.Get("name").String(), "Gross Profit") {
			grossProfit = sec.Get("total").Float()
			return false
		}
		return true
	})
	if grossProfit <= 0 {
		return 0
	}

	var lifespan float64
	for _, c := range customers {
		lifespan += float64(monthsBetween(c.created, now))
	}
	lifespan /= float64(len(customers))

	return revenue / float64(len(customers)) * (grossProfit / revenue) * lifespan
}

// churnRate is the share of customers that existed at periodStart and are
// inactive now.
func churnRate(customers []customer, periodStart time.Time) float64 {
	var base, lost int
	for _, c := range customers {
		if !sameDayOrBefore(c.created, periodStart) {
			continue
		}
		base++
		if !c.active {
			lost++
		}
	}
	if base == 0 {
		return 0
	}
	return float64(lost) * 100 / float64(base)
}
