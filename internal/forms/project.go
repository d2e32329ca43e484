package forms

import (
	"strings"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
)

// Project is the project creation form. Recurrence may still hold a value
// chosen before IsOneTime was ticked; it is dropped from the request then.
type Project struct {
	Name       string
	Partner    int
	IsOneTime  bool
	Recurrence api.Recurrence
	StartDate  string
	EndDate    string
}

// Request validates the form and builds the request body. Partner and end
// date are omitted when unset.
func (f Project) Request() (api.CreateProjectRequest, error) {
	if err := required("name", f.Name, i18n.MsgNameRequired); err != nil {
		return api.CreateProjectRequest{}, err
	}
	if err := required("start_date", f.StartDate, i18n.MsgStartDateRequired); err != nil {
		return api.CreateProjectRequest{}, err
	}
	start, err := parseDate("start_date", f.StartDate)
	if err != nil {
		return api.CreateProjectRequest{}, err
	}

	req := api.CreateProjectRequest{
		Name:      strings.TrimSpace(f.Name),
		IsOneTime: f.IsOneTime,
		StartDate: start.Format(dateLayout),
	}

	if strings.TrimSpace(f.EndDate) != "" {
		end, err := parseDate("end_date", f.EndDate)
		if err != nil {
			return api.CreateProjectRequest{}, err
		}
		if end.Before(start) {
			return api.CreateProjectRequest{}, invalid("end_date", i18n.MsgEndBeforeStart)
		}
		req.EndDate = end.Format(dateLayout)
	}

	if !f.IsOneTime {
		if !f.Recurrence.Valid() {
			return api.CreateProjectRequest{}, invalid("recurrence_pattern", i18n.MsgRecurrenceRequired)
		}
		req.RecurrencePattern = f.Recurrence
	}

	if f.Partner > 0 {
		partner := f.Partner
		req.Partner = &partner
	}
	return req, nil
}
