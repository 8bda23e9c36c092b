package game

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/clout-chase/internal/client"
	"github.com/Garsondee/clout-chase/internal/leaderboard"
	"github.com/Garsondee/clout-chase/internal/sim"
	"github.com/Garsondee/clout-chase/internal/sound"
)

// borderWidth is the pixel gap between the window edge and the board.
const borderWidth = 24

const (
	controlsHeight = 96
	loginTimeout   = 5 * time.Second
	toastDuration  = 2 * time.Second
)

// mode is the host screen, layered over the engine state.
type mode int

const (
	modeLogin     mode = iota // typing a username
	modeLoggingIn             // EnsureUser in flight
	modeReady                 // instructions and start button
	modePlaying               // engine started; running or showing an outcome
)

// Config wires the host to its collaborators.
type Config struct {
	// Board is the leaderboard wins are reported to. Nil plays without one.
	Board sim.Leaderboard
	// Fallback opens an offline leaderboard when Board cannot be reached.
	Fallback func() (sim.Leaderboard, error)
	// User skips the entry screen when set.
	User   string
	Assets string
	Mute   bool
	Seed   int64 // 0 seeds from the clock
	Logger *log.Logger
}

type loginResult struct {
	board   sim.Leaderboard
	user    string
	offline bool
	err     error
}

// Game is the Ebiten host around one sim.Engine.
type Game struct {
	cfg    Config
	tuning sim.Tuning
	sched  *sim.ManualScheduler
	engine *sim.Engine
	rng    *rand.Rand

	user    string
	offline bool
	panel   *StandingsPanel
	assets  *Assets
	audio   *Audio
	logger  *log.Logger

	mode     mode
	name     string
	loginErr string
	logins   chan loginResult
	runes    []rune

	keys         *keyEdges
	pad          []padButton
	padLit       sim.Dir
	padLitFrames int
	hover        bool
	last         sim.Snapshot
	toast        string
	toastUntil   time.Time
	frames       int
	quit         bool

	width, height  int
	boardX, boardY int
	boardW, boardH int

	cancel context.CancelFunc
	bg     sync.WaitGroup
}

// New builds the host, loads assets and starts the leaderboard poller.
func New(cfg Config) *Game {
	t := sim.DefaultTuning()
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[game] ", log.LstdFlags)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:    cfg,
		tuning: t,
		sched:  sim.NewManualScheduler(),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		logger: cfg.Logger,
		logins: make(chan loginResult, 1),
		keys:   newKeyEdges(),
		boardX: borderWidth,
		boardY: borderWidth,
		boardW: t.CanvasWidth,
		boardH: t.CanvasHeight,
	}
	g.width = borderWidth + g.boardW + borderWidth + panelWidth
	g.height = borderWidth + g.boardH + borderWidth + controlsHeight
	g.pad = padButtons(g.boardX+g.boardW/2, g.boardY+g.boardH+borderWidth)

	g.assets = LoadAssets(cfg.Assets, sim.DefaultRewardIDs(t.RewardCount), g.logger)
	g.audio = NewAudio(cfg.Mute, g.logger)
	g.panel = NewStandingsPanel(cfg.Board, g.logger)

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.bg.Add(1)
	go func() {
		defer g.bg.Done()
		g.panel.Run(ctx, pollInterval)
	}()

	if name := strings.TrimSpace(cfg.User); name != "" {
		g.name = name
		g.submitLogin()
	}
	return g
}

// Close stops the poller and waits for background work, including pending
// win notifications.
func (g *Game) Close() {
	g.cancel()
	if g.engine != nil {
		g.engine.Close()
	}
	g.bg.Wait()
}

// --- Login ---

func (g *Game) submitLogin() {
	name := strings.TrimSpace(g.name)
	if name == "" {
		g.loginErr = "enter a name first"
		return
	}
	g.mode = modeLoggingIn
	g.loginErr = ""
	board, fallback := g.cfg.Board, g.cfg.Fallback
	g.bg.Add(1)
	go func() {
		defer g.bg.Done()
		g.logins <- ensureUser(board, fallback, name, g.logger)
	}()
}

// ensureUser registers name with board, switching to the fallback board if
// the primary one fails for any reason other than a rejected name.
func ensureUser(board sim.Leaderboard, fallback func() (sim.Leaderboard, error), name string, logger *log.Logger) loginResult {
	if board == nil {
		return loginResult{user: name}
	}
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	u, err := board.EnsureUser(ctx, name)
	if err == nil {
		return loginResult{board: board, user: u.Username}
	}
	if rejectedName(err) {
		return loginResult{err: err}
	}
	logger.Printf("login_failed user=%s err=%v", name, err)
	if fallback == nil {
		return loginResult{err: err}
	}
	fb, ferr := fallback()
	if ferr != nil {
		logger.Printf("offline_open_failed err=%v", ferr)
		return loginResult{err: err}
	}
	u, err = fb.EnsureUser(ctx, name)
	if err != nil {
		return loginResult{err: err}
	}
	logger.Printf("offline_mode user=%s", u.Username)
	return loginResult{board: fb, user: u.Username, offline: true}
}

// rejectedName reports errors caused by the name itself, which the fallback
// board would reject too.
func rejectedName(err error) bool {
	var se *client.StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		return true
	}
	return errors.Is(err, leaderboard.ErrInvalidUsername)
}

func (g *Game) drainLogin() {
	select {
	case res := <-g.logins:
		if res.err != nil {
			g.mode = modeLogin
			g.loginErr = "login failed: " + res.err.Error()
			return
		}
		g.startEngine(res)
	default:
	}
}

func (g *Game) startEngine(res loginResult) {
	g.user = res.user
	g.offline = res.offline
	if res.board != nil {
		g.panel.SetSource(res.board)
	}
	g.engine = sim.New(g.sched,
		sim.WithTuning(g.tuning),
		sim.WithRand(g.rng),
		sim.WithRenderer(sim.RendererFunc(g.onFrame)),
		sim.WithLeaderboard(res.board, res.user),
		sim.WithLogger(log.New(g.logger.Writer(), "[sim] ", g.logger.Flags())),
		sim.WithWinRecorded(func(sim.User) { g.panel.Poke() }),
	)
	g.last = g.engine.Snapshot()
	g.mode = modeReady
}

// onFrame receives every engine render and turns state changes into sound.
func (g *Game) onFrame(s sim.Snapshot) {
	if e, ok := frameCue(g.last, s); ok {
		g.audio.Play(e)
	}
	g.last = s
}

// frameCue picks the effect for the transition prev -> cur.
func frameCue(prev, cur sim.Snapshot) (sound.Effect, bool) {
	switch {
	case cur.State == sim.StateWon && prev.State != sim.StateWon:
		return sound.EffectWin, true
	case cur.State == sim.StateLost && prev.State != sim.StateLost:
		return sound.EffectLose, true
	case cur.State == sim.StateRunning && cur.Pickups > prev.Pickups:
		return sound.EffectPickup, true
	}
	return 0, false
}

// --- Ebiten loop ---

func (g *Game) Update() error {
	g.frames++
	g.keys.poll(ebiten.IsKeyPressed)
	g.drainLogin()
	g.handleInput()
	if g.quit {
		return ebiten.Termination
	}
	if g.engine != nil {
		tps := ebiten.TPS()
		if tps <= 0 {
			tps = ebiten.DefaultTPS
		}
		g.sched.Advance(time.Second / time.Duration(tps))
	}
	if g.padLitFrames > 0 {
		g.padLitFrames--
	}
	if g.toast != "" && time.Now().After(g.toastUntil) {
		g.toast = ""
	}
	return nil
}

func (g *Game) handleInput() {
	if g.keys.just(ebiten.KeyEscape) {
		g.quit = true
		return
	}
	switch g.mode {
	case modeLogin:
		g.runes = ebiten.AppendInputChars(g.runes[:0])
		g.name = editName(g.name, g.runes, g.keys.just(ebiten.KeyBackspace))
		if g.keys.just(ebiten.KeyEnter) || g.keys.just(ebiten.KeyNumpadEnter) {
			g.submitLogin()
		}
		return
	case modeLoggingIn:
		return
	}

	if g.keys.just(ebiten.KeyM) {
		if g.audio.ToggleMusic() {
			g.showToast("music on")
		} else {
			g.showToast("music off")
		}
	}
	if g.keys.just(ebiten.KeyC) {
		g.copyStandings()
	}

	clicks := pointerPresses()
	if g.mode == modeReady {
		bx, by, bw, bh := g.startButton()
		cx, cy := ebiten.CursorPosition()
		g.hover = cx >= bx && cx < bx+bw && cy >= by && cy < by+bh
		start := g.keys.just(ebiten.KeySpace) || g.keys.just(ebiten.KeyEnter)
		for _, p := range clicks {
			if p[0] >= bx && p[0] < bx+bw && p[1] >= by && p[1] < by+bh {
				start = true
			}
		}
		if start && g.engine.Start() {
			g.audio.Play(sound.EffectClick)
			g.audio.StartMusic()
			g.mode = modePlaying
		}
		return
	}

	if g.keys.just(ebiten.KeySpace) {
		g.engine.Restart()
		return
	}
	if g.engine.State().Terminal() {
		if g.keys.just(ebiten.KeyEnter) || g.keys.just(ebiten.KeyNumpadEnter) || g.clickedBoard(clicks) {
			g.engine.Acknowledge()
		}
		return
	}
	for _, k := range trackedKeys {
		if d := dirForKey(k); d != sim.DirNone && g.keys.just(k) {
			g.engine.Queue(d)
		}
	}
	for _, p := range clicks {
		if d := hitPad(g.pad, p[0], p[1]); d != sim.DirNone {
			g.engine.Queue(d)
			g.padLit, g.padLitFrames = d, 8
		}
	}
}

func (g *Game) clickedBoard(clicks [][2]int) bool {
	for _, p := range clicks {
		if p[0] >= g.boardX && p[0] < g.boardX+g.boardW && p[1] >= g.boardY && p[1] < g.boardY+g.boardH {
			return true
		}
	}
	return false
}

// pointerPresses returns the positions of mouse clicks and new touches this
// frame.
func pointerPresses() [][2]int {
	var out [][2]int
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		out = append(out, [2]int{x, y})
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		out = append(out, [2]int{x, y})
	}
	return out
}

func (g *Game) copyStandings() {
	if err := clipboard.WriteAll(g.panel.Text()); err != nil {
		g.logger.Printf("clipboard_failed err=%v", err)
		g.showToast("copy failed")
		return
	}
	g.showToast("leaderboard copied")
}

func (g *Game) showToast(msg string) {
	g.toast = msg
	g.toastUntil = time.Now().Add(toastDuration)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackdrop)
	ox, oy := float32(g.boardX), float32(g.boardY)
	fillBoard(screen, ox, oy, float32(g.boardW), float32(g.boardH))

	switch g.mode {
	case modeLogin, modeLoggingIn:
		g.drawLogin(screen)
	case modeReady:
		g.drawReady(screen)
	case modePlaying:
		s := g.engine.Snapshot()
		g.drawBoard(screen, s)
		g.drawScoreLine(screen, s)
		if s.State.Terminal() {
			g.drawOutcome(screen, s)
		}
	}
	g.drawPad(screen)
	g.drawToast(screen)
	g.panel.Draw(screen, g.width-panelWidth, g.height, g.user, time.Now())
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size the game lays out for.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}
