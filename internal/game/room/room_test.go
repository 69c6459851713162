package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananand/Vocly/internal/game/guess"
)

const testMaxGuesses = 6

// fixedClock pins a room's clock so finish times are deterministic.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRoom(t *testing.T, secret string) (*Room, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Unix(1700000000, 0)}
	rm := New("ABCDE", secret, "p1")
	rm.now = clock.now
	return rm, clock
}

func readyRoom(t *testing.T, secret string) (*Room, *fixedClock) {
	t.Helper()
	rm, clock := newTestRoom(t, secret)
	require.NoError(t, rm.Join("p2"))
	return rm, clock
}

func playingRoom(t *testing.T, secret string) (*Room, *fixedClock) {
	t.Helper()
	rm, clock := readyRoom(t, secret)
	require.NoError(t, rm.Start())
	return rm, clock
}

func TestNewRoomIsWaiting(t *testing.T) {
	rm, _ := newTestRoom(t, "APPLE")
	assert.Equal(t, StateWaiting, rm.State())
	assert.Equal(t, []string{"p1"}, rm.Players())
	assert.True(t, rm.HasPlayer("p1"))
	assert.False(t, rm.HasPlayer("p2"))
}

func TestJoinMakesRoomReady(t *testing.T) {
	rm, _ := newTestRoom(t, "APPLE")
	require.NoError(t, rm.Join("p2"))
	assert.Equal(t, StateReady, rm.State())
	assert.Equal(t, []string{"p1", "p2"}, rm.Players())
}

func TestJoinFullRoomRejected(t *testing.T) {
	rm, _ := readyRoom(t, "APPLE")
	err := rm.Join("p3")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, []string{"p1", "p2"}, rm.Players())
}

func TestJoinDuringRoundRejected(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	err := rm.Join("p3")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, StatePlaying, rm.State())
}

func TestStartRequiresReady(t *testing.T) {
	rm, _ := newTestRoom(t, "APPLE")
	err := rm.Start()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StateWaiting, rm.State())
}

func TestStartTwiceRejected(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	err := rm.Start()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StatePlaying, rm.State())
}

func TestGuessBeforeStartRejected(t *testing.T) {
	rm, _ := readyRoom(t, "APPLE")
	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestGuessWrongLengthRejected(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	_, err := rm.RecordGuess("p1", "APPLES", testMaxGuesses)
	assert.ErrorIs(t, err, ErrGuessLength)
	assert.Equal(t, 0, rm.GuessCount("p1"))
}

func TestWrongGuessRecordsHistory(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")

	out, err := rm.RecordGuess("p1", "BREAD", testMaxGuesses)
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.False(t, out.Finished)
	assert.False(t, out.RoundOver)
	assert.Equal(t, 1, out.GuessCount)
	assert.Len(t, out.Feedback, 5)
	assert.Equal(t, 1, rm.GuessCount("p1"))
	assert.Equal(t, 0, rm.GuessCount("p2"))
}

func TestCorrectGuessFinishesPlayerButNotRound(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")
	clock.advance(5 * time.Second)

	out, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.True(t, out.Finished)
	assert.Equal(t, ResultWon, out.Result)
	assert.InDelta(t, 5.0, out.Elapsed, 0.001)

	// One finished player must not end a 2-player round.
	assert.False(t, out.RoundOver)
	assert.Nil(t, out.Final)
	assert.Equal(t, StatePlaying, rm.State())

	ft, ok := rm.FinishTime("p1")
	require.True(t, ok)
	assert.InDelta(t, 5.0, ft, 0.001)
	_, ok = rm.FinishTime("p2")
	assert.False(t, ok)
}

func TestFinishedPlayerGuessesDropped(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)

	out, err := rm.RecordGuess("p1", "BREAD", testMaxGuesses)
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.Equal(t, 1, rm.GuessCount("p1"))
}

func TestExhaustedGuessesLosePlayer(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")
	clock.advance(10 * time.Second)

	wrong := []string{"BREAD", "CHAIR", "DANCE", "EAGLE", "FLAME", "GRAPE"}
	var out GuessOutcome
	var err error
	for _, w := range wrong {
		out, err = rm.RecordGuess("p2", w, testMaxGuesses)
		require.NoError(t, err)
	}

	assert.True(t, out.Finished)
	assert.Equal(t, ResultLost, out.Result)
	assert.Equal(t, testMaxGuesses, out.GuessCount)
	res, ok := rm.PlayerResult("p2")
	require.True(t, ok)
	assert.Equal(t, ResultLost, res)
}

func TestRoundOverWhenBothFinish(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")

	clock.advance(3 * time.Second)
	out1, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	require.False(t, out1.RoundOver)

	clock.advance(4 * time.Second)
	out2, err := rm.RecordGuess("p2", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	require.True(t, out2.RoundOver)
	require.NotNil(t, out2.Final)

	assert.Equal(t, StateFinished, rm.State())
	assert.Equal(t, "APPLE", out2.Final.Word)
	assert.Equal(t, "Player 1 wins! (3.00s vs 7.00s)", out2.Final.Description)
}

func TestWinnerRules(t *testing.T) {
	type playerEnd struct {
		result  Result
		elapsed time.Duration
	}
	cases := []struct {
		name string
		p1   playerEnd
		p2   playerEnd
		want string
	}{
		{
			name: "both lost is a draw",
			p1:   playerEnd{ResultLost, 10 * time.Second},
			p2:   playerEnd{ResultLost, 20 * time.Second},
			want: "Draw! Both players ran out of guesses. Word: APPLE",
		},
		{
			name: "lone winner wins regardless of time",
			p1:   playerEnd{ResultWon, 50 * time.Second},
			p2:   playerEnd{ResultLost, 5 * time.Second},
			want: "Player 1 wins! (50.00s)",
		},
		{
			name: "lone winner as player 2",
			p1:   playerEnd{ResultLost, 5 * time.Second},
			p2:   playerEnd{ResultWon, 60 * time.Second},
			want: "Player 2 wins! (60.00s)",
		},
		{
			name: "both won, faster wins",
			p1:   playerEnd{ResultWon, 30 * time.Second},
			p2:   playerEnd{ResultWon, 12 * time.Second},
			want: "Player 2 wins! (12.00s vs 30.00s)",
		},
		{
			name: "both won, equal times is a draw",
			p1:   playerEnd{ResultWon, 15 * time.Second},
			p2:   playerEnd{ResultWon, 15 * time.Second},
			want: "Draw! (15.00s)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rm, _ := playingRoom(t, "APPLE")
			rm.mu.Lock()
			rm.finishTimes["p1"] = tc.p1.elapsed.Seconds()
			rm.results["p1"] = tc.p1.result
			rm.finishTimes["p2"] = tc.p2.elapsed.Seconds()
			rm.results["p2"] = tc.p2.result
			final := rm.finishRoundLocked()
			rm.mu.Unlock()

			require.NotNil(t, final)
			assert.Equal(t, tc.want, final.Description)
			assert.Equal(t, StateFinished, rm.State())
		})
	}
}

func TestExpireRoundMarksUnfinishedLost(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")

	clock.advance(2 * time.Second)
	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)

	outcome, expired := rm.ExpireRound(180 * time.Second)
	require.True(t, expired)
	assert.Equal(t, StateFinished, rm.State())
	assert.Equal(t, "Player 1 wins! (2.00s)", outcome.Description)

	ft, ok := rm.FinishTime("p2")
	require.True(t, ok)
	assert.InDelta(t, 180.0, ft, 0.001)
	res, _ := rm.PlayerResult("p2")
	assert.Equal(t, ResultLost, res)
}

func TestExpireRoundOnFinishedRoomIsNoop(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")

	clock.advance(2 * time.Second)
	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	clock.advance(1 * time.Second)
	out, err := rm.RecordGuess("p2", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	require.True(t, out.RoundOver)

	ft1Before, _ := rm.FinishTime("p1")
	ft2Before, _ := rm.FinishTime("p2")

	_, expired := rm.ExpireRound(180 * time.Second)
	assert.False(t, expired)

	// A late expiry must not overwrite recorded results.
	ft1, _ := rm.FinishTime("p1")
	ft2, _ := rm.FinishTime("p2")
	assert.Equal(t, ft1Before, ft1)
	assert.Equal(t, ft2Before, ft2)
	assert.Equal(t, StateFinished, rm.State())
}

func TestGuessAfterExpiryRejected(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	_, expired := rm.ExpireRound(180 * time.Second)
	require.True(t, expired)

	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestRematchResetsRound(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")
	clock.advance(2 * time.Second)
	_, err := rm.RecordGuess("p1", "APPLE", testMaxGuesses)
	require.NoError(t, err)
	_, expired := rm.ExpireRound(180 * time.Second)
	require.True(t, expired)

	require.NoError(t, rm.Rematch("TIGER"))

	assert.Equal(t, StateReady, rm.State())
	assert.Equal(t, "TIGER", rm.Secret())
	assert.Equal(t, []string{"p1", "p2"}, rm.Players())
	assert.Equal(t, 0, rm.GuessCount("p1"))
	_, ok := rm.FinishTime("p1")
	assert.False(t, ok)
	_, ok = rm.PlayerResult("p1")
	assert.False(t, ok)
}

func TestRematchRequiresFinished(t *testing.T) {
	rm, _ := playingRoom(t, "APPLE")
	err := rm.Rematch("TIGER")
	assert.ErrorIs(t, err, ErrRematchUnavailable)
	assert.Equal(t, StatePlaying, rm.State())

	rm2, _ := readyRoom(t, "APPLE")
	assert.ErrorIs(t, rm2.Rematch("TIGER"), ErrRematchUnavailable)
}

func TestRematchThenStartPlaysNewRound(t *testing.T) {
	rm, clock := playingRoom(t, "APPLE")
	_, expired := rm.ExpireRound(180 * time.Second)
	require.True(t, expired)
	require.NoError(t, rm.Rematch("TIGER"))
	require.NoError(t, rm.Start())

	clock.advance(1 * time.Second)
	out, err := rm.RecordGuess("p1", "TIGER", testMaxGuesses)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, []guess.Mark{
		guess.MarkCorrect, guess.MarkCorrect, guess.MarkCorrect,
		guess.MarkCorrect, guess.MarkCorrect,
	}, out.Feedback)
}
