package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
)

const DefaultPerPage = 10

// Callback actions carried in button data as "<action>:<value>".
const (
	ActionSelectCity     = "select_city"
	ActionCityPage       = "city_page"
	ActionSelectLocation = "environment"
)

var ErrUnknownCallback = errors.New("unknown callback data")

type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// CityPage is one page of the city picker. Controls holds the Next and
// Previous buttons, when they apply.
type CityPage struct {
	Page     int      `json:"page"`
	Buttons  []Button `json:"buttons"`
	Controls []Button `json:"controls"`
	HasNext  bool     `json:"has_next"`
	HasPrev  bool     `json:"has_prev"`
}

// Paginate returns the city buttons for page (zero based). Pages past the
// end are empty; negative pages are treated as the first page.
func Paginate(page, perPage int) CityPage {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 0 {
		page = 0
	}

	start := page * perPage
	end := start + perPage
	if start > len(cities) {
		start = len(cities)
	}
	if end > len(cities) {
		end = len(cities)
	}

	p := CityPage{
		Page:     page,
		Buttons:  make([]Button, 0, end-start),
		Controls: []Button{},
		HasNext:  len(cities) > start+perPage,
		HasPrev:  page > 0,
	}
	for _, c := range cities[start:end] {
		p.Buttons = append(p.Buttons, Button{Text: c.Persian, Data: ActionSelectCity + ":" + c.Persian})
	}
	if p.HasNext {
		p.Controls = append(p.Controls, Button{Text: "Next", Data: fmt.Sprintf("%s:%d", ActionCityPage, page+1)})
	}
	if p.HasPrev {
		p.Controls = append(p.Controls, Button{Text: "Previous", Data: fmt.Sprintf("%s:%d", ActionCityPage, page-1)})
	}
	return p
}

// EnvironmentButtons returns the indoor/outdoor choice with Persian labels.
func EnvironmentButtons() []Button {
	return []Button{
		{Text: "سرباز", Data: ActionSelectLocation + ":" + string(domain.Outdoor)},
		{Text: "سرپوشیده", Data: ActionSelectLocation + ":" + string(domain.Indoor)},
	}
}

type Callback struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Page   int    `json:"page,omitempty"`
}

// ParseCallback decodes button data produced by Paginate or
// EnvironmentButtons.
func ParseCallback(data string) (Callback, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || value == "" {
		return Callback{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	switch action {
	case ActionCityPage:
		page, err := strconv.Atoi(value)
		if err != nil || page < 0 {
			return Callback{}, fmt.Errorf("%w: bad page %q", ErrUnknownCallback, value)
		}
		return Callback{Action: action, Value: value, Page: page}, nil
	case ActionSelectCity:
		if _, err := EnglishName(value); err != nil {
			return Callback{}, err
		}
		return Callback{Action: action, Value: value}, nil
	case ActionSelectLocation:
		if value != string(domain.Indoor) && value != string(domain.Outdoor) {
			return Callback{}, fmt.Errorf("%w: bad environment %q", ErrUnknownCallback, value)
		}
		return Callback{Action: action, Value: value}, nil
	default:
		return Callback{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
}
