// Package entryform holds the huh forms for creating tasks, goals, habits,
// events and diary entries.
package entryform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
)

// eventLayout is the date-time format typed into event forms.
const eventLayout = "2006-01-02 15:04"

var weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// Kind selects what the form creates.
type Kind int

const (
	KindTask Kind = iota
	KindGoal
	KindHabit
	KindEvent
	KindDiary
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindGoal:
		return "goal"
	case KindHabit:
		return "habit"
	case KindEvent:
		return "event"
	case KindDiary:
		return "diary entry"
	}
	return "entry"
}

// OpenMsg asks the app to show the form for Kind.
type OpenMsg struct {
	Kind Kind
}

// SubmitMsg carries a validated request. Only the field matching Kind is set.
type SubmitMsg struct {
	Kind  Kind
	Task  model.TaskRequest
	Goal  model.GoalRequest
	Habit model.Habit
	Event model.EventRequest
	Diary model.DiaryEntryRequest
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	content     string
	location    string
	taskType    model.TaskType
	priority    model.TaskPriority
	date        string
	start       string
	end         string
	activeDays  []string
}

// Model is the create form.
type Model struct {
	kind   Kind
	form   *huh.Form
	fb     *formBindings
	now    func() time.Time
	width  int
	height int
}

// New creates an empty entry form.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, now: time.Now, width: width, height: height}
}

// Kind returns what the form currently creates.
func (m Model) Kind() Kind { return m.kind }

// Start resets the bindings and builds the form for kind.
func (m *Model) Start(kind Kind) tea.Cmd {
	m.kind = kind
	*m.fb = formBindings{
		taskType: model.TaskTypeWork,
		priority: model.TaskPriorityMedium,
	}

	today := m.now().Format(model.DateLayout)
	switch kind {
	case KindTask:
		m.fb.date = today
		m.form = m.buildTaskForm()
	case KindGoal:
		m.form = m.buildGoalForm()
	case KindHabit:
		m.fb.activeDays = append([]string(nil), weekdays...)
		m.form = m.buildHabitForm()
	case KindEvent:
		m.form = m.buildEventForm()
	default:
		m.fb.date = today
		m.form = m.buildDiaryForm()
	}
	return m.form.Init()
}

// Update handles messages for the entry form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		out := m.submit()
		return m, func() tea.Msg { return out }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the entry form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	content := theme.TitleStyle.Render("New "+m.kind.String()) + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) submit() SubmitMsg {
	fb := m.fb
	out := SubmitMsg{Kind: m.kind}
	title := strings.TrimSpace(fb.title)

	switch m.kind {
	case KindTask:
		out.Task = model.TaskRequest{
			Title:       title,
			Description: strings.TrimSpace(fb.description),
			Type:        fb.taskType,
			Status:      model.TaskStatusPending,
			Priority:    fb.priority,
			StartDate:   m.now().Format(model.DateLayout),
			DueDate:     strings.TrimSpace(fb.date),
		}
	case KindGoal:
		progress := 0
		out.Goal = model.GoalRequest{
			Title:       title,
			Description: strings.TrimSpace(fb.description),
			Progress:    &progress,
			TargetDate:  strings.TrimSpace(fb.date),
		}
	case KindHabit:
		out.Habit = model.Habit{
			Name:          title,
			Description:   strings.TrimSpace(fb.description),
			ActiveDays:    append([]string(nil), fb.activeDays...),
			ReminderTimes: []string{},
			Active:        true,
		}
	case KindEvent:
		out.Event = model.EventRequest{
			Title:         title,
			Description:   strings.TrimSpace(fb.description),
			StartDateTime: wireDateTime(fb.start),
			EndDateTime:   wireDateTime(fb.end),
			Location:      strings.TrimSpace(fb.location),
		}
	case KindDiary:
		out.Diary = model.DiaryEntryRequest{
			Title:     title,
			Content:   strings.TrimSpace(fb.content),
			EntryDate: strings.TrimSpace(fb.date),
		}
	}
	return out
}

// wireDateTime converts typed input into the zone-less form the backend
// expects. Input has already been validated.
func wireDateTime(s string) string {
	t, err := time.Parse(eventLayout, strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}

func (m *Model) buildTaskForm() *huh.Form {
	typeOpts := make([]huh.Option[model.TaskType], 0, len(model.TaskTypes()))
	for _, t := range model.TaskTypes() {
		typeOpts = append(typeOpts, huh.NewOption(t.Label(), t))
	}
	prioOpts := make([]huh.Option[model.TaskPriority], 0, len(model.TaskPriorities()))
	for _, p := range model.TaskPriorities() {
		prioOpts = append(prioOpts, huh.NewOption(p.Icon()+" "+p.Label(), p))
	}

	return m.newForm(
		m.titleField("Title", "What needs to be done?"),
		m.descriptionField(),
		huh.NewSelect[model.TaskType]().
			Title("Type").
			Options(typeOpts...).
			Value(&m.fb.taskType),
		huh.NewSelect[model.TaskPriority]().
			Title("Priority").
			Options(prioOpts...).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.date).
			Validate(validateOptionalDate),
	)
}

func (m *Model) buildGoalForm() *huh.Form {
	return m.newForm(
		m.titleField("Title", "What do you want to achieve?"),
		m.descriptionField(),
		huh.NewInput().
			Title("Target date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
	)
}

func (m *Model) buildHabitForm() *huh.Form {
	opts := make([]huh.Option[string], len(weekdays))
	for i, d := range weekdays {
		opts[i] = huh.NewOption(model.EnumLabel(d), d)
	}
	return m.newForm(
		m.titleField("Name", "Drink water, stretch..."),
		m.descriptionField(),
		huh.NewMultiSelect[string]().
			Title("Active days").
			Options(opts...).
			Value(&m.fb.activeDays).
			Validate(func(days []string) error {
				if len(days) == 0 {
					return fmt.Errorf("pick at least one day")
				}
				return nil
			}),
	)
}

func (m *Model) buildEventForm() *huh.Form {
	return m.newForm(
		m.titleField("Title", "Meeting, appointment..."),
		m.descriptionField(),
		huh.NewInput().
			Title("Location").
			Placeholder("Optional").
			Value(&m.fb.location),
		huh.NewInput().
			Title("Starts").
			Placeholder("YYYY-MM-DD HH:MM").
			Value(&m.fb.start).
			Validate(validateDateTime),
		huh.NewInput().
			Title("Ends").
			Placeholder("YYYY-MM-DD HH:MM").
			Value(&m.fb.end).
			Validate(func(s string) error {
				if err := validateDateTime(s); err != nil {
					return err
				}
				return validateEventRange(m.fb.start, s)
			}),
	)
}

func (m *Model) buildDiaryForm() *huh.Form {
	return m.newForm(
		huh.NewInput().
			Title("Title").
			Placeholder("Optional").
			Value(&m.fb.title),
		huh.NewText().
			Title("Entry").
			Placeholder("How was your day?").
			Value(&m.fb.content).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" && strings.TrimSpace(m.fb.title) == "" {
					return fmt.Errorf("write something or add a title")
				}
				return nil
			}),
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
	)
}

func (m *Model) newForm(fields ...huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) titleField(title, placeholder string) huh.Field {
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&m.fb.title).
		Validate(validateRequired(title))
}

func (m *Model) descriptionField() huh.Field {
	return huh.NewText().
		Title("Description").
		Placeholder("Optional details...").
		Value(&m.fb.description)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(fieldName))
		}
		return nil
	}
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("date is required")
	}
	return validateOptionalDate(s)
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateDateTime(s string) error {
	if _, err := time.Parse(eventLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD HH:MM")
	}
	return nil
}

func validateEventRange(start, end string) error {
	s, err := time.Parse(eventLayout, strings.TrimSpace(start))
	if err != nil {
		return nil
	}
	e, err := time.Parse(eventLayout, strings.TrimSpace(end))
	if err != nil {
		return nil
	}
	if !e.After(s) {
		return fmt.Errorf("event must end after it starts")
	}
	return nil
}
