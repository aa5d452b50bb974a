package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/state"
)

var tuiSprites = map[animation.Frame][]string{
	animation.FrameIdle: {
		` /\_/\  `,
		`( o.o ) `,
		` _| |_  `,
	},
	animation.FrameHitLeft: {
		` /\_/\  `,
		`( >.o ) `,
		`_/ | |_ `,
	},
	animation.FrameHitRight: {
		` /\_/\  `,
		`( o.< ) `,
		` _| |\_ `,
	},
}

var (
	tuiCounterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	tuiSpriteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	tuiBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tuiHintStyle    = lipgloss.NewStyle().Faint(true)
)

type tuiTickMsg struct{}

type tuiModel struct {
	store     *state.Store
	tickEvery time.Duration
	snap      state.State
	width     int
	height    int
}

func (m tuiModel) Init() tea.Cmd { return m.tick() }

func (m tuiModel) tick() tea.Cmd {
	return tea.Tick(m.tickEvery, func(time.Time) tea.Msg { return tuiTickMsg{} })
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		return m, nil
	case tuiTickMsg:
		m.snap = m.store.Snapshot()
		return m, m.tick()
	}
	return m, nil
}

func (m tuiModel) View() string {
	return renderTUI(m.snap, m.width, m.height)
}

// renderTUI lays out the label above the sprite, pushed to the bottom-right
// of a width x height terminal when the size is known.
func renderTUI(snap state.State, width, height int) string {
	sprite, ok := tuiSprites[snap.Frame]
	if !ok {
		sprite = tuiSprites[animation.FrameIdle]
	}
	label := snap.CounterText
	if label == "" {
		label = "0"
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		tuiCounterStyle.Render(label),
		tuiSpriteStyle.Render(strings.Join(sprite, "\n")),
	)
	if snap.WriterDown {
		body = lipgloss.JoinVertical(lipgloss.Center, body, tuiHintStyle.Render("not saving"))
	}
	box := tuiBoxStyle.Render(body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, box)
}

// TUIRenderer draws the overlay in a terminal with bubbletea. It never reads
// the keyboard; keystrokes are counted from the raw devices only.
type TUIRenderer struct {
	Output io.Writer
	Logger Logger

	mu      sync.Mutex
	program *tea.Program
}

func NewTUIRenderer(output io.Writer, logger Logger) *TUIRenderer {
	if output == nil {
		output = os.Stdout
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &TUIRenderer{Output: output, Logger: logger}
}

func (r *TUIRenderer) Start(ctx context.Context) error {
	if r.Output == nil {
		return errors.New("tui renderer has no output")
	}
	return nil
}

func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()
	if program != nil {
		program.Quit()
	}
	return nil
}

func (r *TUIRenderer) SetScreen(Screen) {}

func (r *TUIRenderer) RedrawWithState(snap state.State) {
	_, _ = fmt.Fprintln(r.Output, renderTUI(snap, 0, 0))
}

// RunLoop runs the bubbletea program until ctx is done.
func (r *TUIRenderer) RunLoop(ctx context.Context, store *state.Store) {
	model := tuiModel{store: store, tickEvery: time.Second / 30, snap: store.Snapshot()}
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(r.Output),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
	)
	r.mu.Lock()
	r.program = program
	r.mu.Unlock()
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && ctx.Err() == nil {
		r.Logger.Errorf("tui", "terminal display stopped: %v", err)
	}
}
