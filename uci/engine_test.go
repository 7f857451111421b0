package uci

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"goose-uci/config"
	"goose-uci/logging"
	"goose-uci/position"
	"goose-uci/search"
	"goose-uci/search/mocks"
)

// syncBuffer is written by the search goroutine while the test reads it.
type syncBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes int
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.writes = 0
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *syncBuffer, *syncBuffer) {
	t.Helper()
	out, diag := &syncBuffer{}, &syncBuffer{}
	e := New(config.Default(), out, diag, logging.Nop(), opts...)
	t.Cleanup(e.Close)
	return e, out, diag
}

func fenAfter(t *testing.T, cmd string) string {
	t.Helper()
	e, _, _ := newEngine(t)
	e.Execute(cmd)
	return e.Position().FEN()
}

func TestUCICommandIsOneWrite(t *testing.T) {
	e, out, _ := newEngine(t)
	assert.True(t, e.Execute("uci"))

	assert.Equal(t, 1, out.Writes())
	text := out.String()
	assert.True(t, strings.HasPrefix(text,
		"id name Goose UCI\nid author the Goose developers\n\noption name Debug Log File type string default <empty>\n"), text)
	assert.Contains(t, text, "\noption name Hash type spin default 16 min 1 max 33554432\n")
	assert.Contains(t, text, "\noption name Clear Hash type button\n")
	assert.Contains(t, text, "\noption name UCI_Chess960 type check default false\n")
	assert.True(t, strings.HasSuffix(text, "\nuciok\n"), text)
}

func TestIsReady(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("isready")
	assert.Equal(t, "readyok\n", out.String())
}

func TestUnknownCommandEchoesLine(t *testing.T) {
	e, out, _ := newEngine(t)
	assert.True(t, e.Execute("  hello   world "))
	assert.Equal(t, "Unknown command:   hello   world \n", out.String())
}

func TestBlankLineIsNoOp(t *testing.T) {
	e, out, _ := newEngine(t)
	assert.True(t, e.Execute(""))
	assert.True(t, e.Execute("   \t"))
	assert.Empty(t, out.String())
}

func TestQuitEndsTheLoop(t *testing.T) {
	e, _, _ := newEngine(t)
	assert.False(t, e.Execute("quit"))
	assert.True(t, e.Execute("stop"))
}

func TestPositionResetsHistory(t *testing.T) {
	e, _, _ := newEngine(t)
	e.Execute("position startpos moves e2e4 e7e5")
	assert.Equal(t, 3, e.States().Len())
	e.Execute("position startpos")

	assert.Equal(t, fenAfter(t, "position startpos"), e.Position().FEN())
	assert.Equal(t, 1, e.States().Len())
	assert.Equal(t, 0, e.Position().StateIndex())
}

func TestPositionAppliesLegalPrefix(t *testing.T) {
	e, _, _ := newEngine(t)
	e.Execute("position startpos moves e2e4 e7e5 e1e8 g1f3")

	assert.Equal(t, fenAfter(t, "position startpos moves e2e4 e7e5"), e.Position().FEN())
	assert.Equal(t, 3, e.States().Len())
}

func TestPositionFen(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	e, _, _ := newEngine(t)
	e.Execute("position fen " + kiwipete + " moves e1g1 a6e2")

	assert.Equal(t, 3, e.States().Len())
	assert.Equal(t, position.White, e.Position().SideToMove())
	assert.NotEqual(t, fenAfter(t, "position fen "+kiwipete), e.Position().FEN())

	// Four fields are enough.
	e.Execute("position fen 4k3/8/8/8/8/8/8/4K3 w - - moves e1e2")
	assert.Equal(t, 2, e.States().Len())
	assert.Equal(t, position.Black, e.Position().SideToMove())
}

func TestPositionRejectsBadFen(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position startpos moves d2d4")
	before := e.Position().FEN()
	states := e.States()

	e.Execute("position fen not/a/fen w - - moves e2e4")
	assert.Contains(t, out.String(), "info string ")
	assert.Equal(t, before, e.Position().FEN())
	assert.Same(t, states, e.States())

	out.Reset()
	e.Execute("position fen moves e2e4")
	assert.Contains(t, out.String(), "info string ")
	assert.Equal(t, before, e.Position().FEN())
}

func TestPositionRejectsCapturableKing(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position startpos moves d2d4")
	before := e.Position().FEN()

	e.Execute("position fen 4k3/8/8/8/8/8/8/4RK2 w - - 0 1 moves e1e8")
	assert.Contains(t, out.String(), "info string ")
	assert.Equal(t, before, e.Position().FEN())
	assert.Len(t, e.Position().LegalMoves(), 20)

	out.Reset()
	e.Execute("go depth 2")
	e.pool.WaitForSearchFinished()
	assert.Contains(t, out.String(), "bestmove ")
}

func TestPositionEnPassantMustMatchSideToMove(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position fen 4k3/8/8/8/8/8/3P4/4K3 w - e3 0 1 moves d2e3")
	assert.Contains(t, out.String(), "info string ")
	assert.Equal(t, position.StartFEN, e.Position().FEN())
}

func TestPositionIgnoresUnknownSubcommand(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position startpos moves e2e4")
	before := e.Position().FEN()
	e.Execute("position somewhere moves d2d4")
	e.Execute("position")
	assert.Equal(t, before, e.Position().FEN())
	assert.Empty(t, out.String())
}

func TestSetOption(t *testing.T) {
	e, out, _ := newEngine(t)

	e.Execute("setoption name UCI_Chess960 value true")
	assert.Equal(t, "true", e.Options().Value("UCI_Chess960"))

	e.Execute("setoption name Move Overhead value 100")
	assert.Equal(t, 100, e.Options().Int("Move Overhead"))
	assert.Empty(t, out.String())

	e.Execute("setoption name DoesNotExist value 5")
	assert.Equal(t, "No such option: DoesNotExist\n", out.String())
	assert.False(t, e.Options().Has("DoesNotExist"))

	out.Reset()
	e.Execute("setoption name Hash value lots")
	assert.Contains(t, out.String(), "info string ")
	assert.Equal(t, "16", e.Options().Value("Hash"))
}

func TestSetOptionChess960AppliesToNextPosition(t *testing.T) {
	e, _, _ := newEngine(t)
	e.Execute("setoption name UCI_Chess960 value true")
	e.Execute("position startpos")
	assert.True(t, e.Position().Chess960())
}

func TestStopAndPonderHitWhileIdle(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("stop")
	e.Execute("ponderhit")
	assert.Empty(t, out.String())
	assert.False(t, e.Searching())
}

func waitFor(t *testing.T, buf *syncBuffer, s string) {
	t.Helper()
	require.Eventually(t, func() bool { return strings.Contains(buf.String(), s) }, 10*time.Second, time.Millisecond, s)
}

func TestGoSearches(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position startpos moves e2e4")
	e.Execute("go depth 2")
	waitFor(t, out, "bestmove ")
	assert.Contains(t, out.String(), "info depth 2 ")
}

func TestGoPerft(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("go perft 3")
	waitFor(t, out, "Nodes searched: 8902")
	e.pool.WaitForSearchFinished()
	assert.NotContains(t, out.String(), "bestmove")
}

func TestGoInfiniteWaitsForStop(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	e.Execute("go infinite depth 2")
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, out.String(), "bestmove")

	e.Execute("stop")
	waitFor(t, out, "bestmove a1a8")
}

func TestGoPonderThenPonderHit(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("go ponder depth 1")
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, out.String(), "bestmove")

	e.Execute("ponderhit")
	waitFor(t, out, "bestmove ")
}

// blockingSearcher returns a mock that searches until stopped.
func blockingSearcher(t *testing.T) *mocks.MockSearcher {
	s := mocks.NewMockSearcher(gomock.NewController(t))
	s.EXPECT().Search(gomock.Any()).DoAndReturn(func(ctx *search.Context) search.Result {
		for !ctx.Stopped() {
			time.Sleep(time.Millisecond)
		}
		return search.Result{}
	}).AnyTimes()
	return s
}

func TestCommandsRejectedWhileSearching(t *testing.T) {
	e, out, _ := newEngine(t, WithSearcher(blockingSearcher(t)))
	e.Execute("go infinite")
	require.True(t, e.Searching())
	before := e.Position().FEN()

	e.Execute("position startpos moves e2e4")
	e.Execute("setoption name UCI_Chess960 value true")
	e.Execute("go depth 3")
	e.Execute("isready")

	text := out.String()
	assert.Contains(t, text, "info string position ignored: search in progress\n")
	assert.Contains(t, text, "info string setoption ignored: search in progress\n")
	assert.Contains(t, text, "info string go ignored: search in progress\n")
	assert.Contains(t, text, "readyok\n")
	assert.Equal(t, before, e.Position().FEN())
	assert.Equal(t, "false", e.Options().Value("UCI_Chess960"))
	assert.True(t, e.Searching())

	// After stop the next command waits for the search instead.
	e.Execute("stop")
	e.Execute("position startpos moves e2e4")
	assert.False(t, e.Searching())
	assert.Equal(t, 2, e.States().Len())
	assert.Contains(t, out.String(), "bestmove (none)\n")
}

func TestSearchDoesNotChangeLivePosition(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("position startpos moves e2e4 c7c5")
	before := e.Position().FEN()
	e.Execute("go depth 3")
	waitFor(t, out, "bestmove ")
	assert.Equal(t, before, e.Position().FEN())
	assert.Equal(t, 3, e.States().Len())
}

func TestUciNewGameClearsSearcher(t *testing.T) {
	s := mocks.NewMockSearcher(gomock.NewController(t))
	s.EXPECT().Clear()
	e, _, _ := newEngine(t, WithSearcher(s))
	e.Execute("ucinewgame")
}

func TestClearHashButton(t *testing.T) {
	s := mocks.NewMockSearcher(gomock.NewController(t))
	s.EXPECT().Clear()
	e, out, _ := newEngine(t, WithSearcher(s))
	e.Execute("setoption name Clear Hash")
	assert.Empty(t, out.String())
}

func TestDebugCommands(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("d")
	assert.Contains(t, out.String(), "Fen: "+e.Position().FEN())
	assert.Contains(t, out.String(), "Key: ")

	out.Reset()
	e.Execute("eval")
	assert.Contains(t, out.String(), "Final evaluation: ")
}

func TestFlip(t *testing.T) {
	e, _, _ := newEngine(t)
	e.Execute("position startpos moves e2e4 e7e5 g1f3")
	before := e.Position().FEN()
	side := e.Position().SideToMove()

	e.Execute("flip")
	assert.Equal(t, 1, e.States().Len())
	assert.NotEqual(t, side, e.Position().SideToMove())
	assert.NotEqual(t, before, e.Position().FEN())

	e.Execute("flip")
	assert.Equal(t, before, e.Position().FEN())
}

func TestConfiguredOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Options = map[string]string{"Hash": "32", "Ponder": "true", "Bogus": "1", "MultiPV": "0"}
	e := New(cfg, &syncBuffer{}, &syncBuffer{}, logging.Nop())
	t.Cleanup(e.Close)

	assert.Equal(t, 32, e.Options().Int("Hash"))
	assert.True(t, e.Options().Bool("Ponder"))
	assert.Equal(t, 1, e.Options().Int("MultiPV"))
	assert.False(t, e.Options().Has("Bogus"))
}

func TestDebugLogFile(t *testing.T) {
	e, out, _ := newEngine(t)
	path := filepath.Join(t.TempDir(), "traffic.log")

	e.Execute("setoption name Debug Log File value " + path)
	e.Execute("isready")
	e.Execute("setoption name Debug Log File value <empty>")
	e.Execute("isready")

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<< isready\n>> readyok\n<< setoption name Debug Log File value <empty>\n", string(buf))
	assert.Equal(t, "readyok\nreadyok\n", out.String())
}

func TestDebugLogFileUnwritable(t *testing.T) {
	e, out, _ := newEngine(t)
	e.Execute("setoption name Debug Log File value " + filepath.Join(t.TempDir(), "missing", "traffic.log"))
	assert.Contains(t, out.String(), "info string Unable to open debug log file")
}
