package bench

import (
	"testing"

	"goose-uci/position"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func setPosition(b *testing.B, fen string) *position.Position {
	b.Helper()
	pos := &position.Position{}
	if err := pos.Set(fen, false, position.NewStateList()); err != nil {
		b.Fatalf("Set: %v", err)
	}
	return pos
}

func benchPerft(b *testing.B, fen string, depth int) {
	pos := setPosition(b, fen)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pos.Perft(depth)
	}
}

func BenchmarkPerft_Initial_D4(b *testing.B) {
	benchPerft(b, position.StartFEN, 4)
}

func BenchmarkPerft_Kiwipete_D3(b *testing.B) {
	benchPerft(b, kiwipete, 3)
}
