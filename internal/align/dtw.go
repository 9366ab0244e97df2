package align

import "github.com/flowalyzer/pronunciation/internal/types"

// move identifies which predecessor produced a DP cell's minimum cost.
type move uint8

const (
	moveNone move = iota
	moveDiagonal
	moveStayReference
	moveStayLearner
)

type point struct{ i, j int }

// dtwResult is one run of the DP recurrence: the resulting monotonic warping
// path in forward order and the total accumulated cost at the path's end.
// The cost matrix itself is not kept.
type dtwResult struct {
	path      []point
	totalCost float64
}

// runDTW computes the monotonic warping path between ref and learner frames
// under the seven-term weighted cost, favoring diagonal moves 2x over the
// two orthogonal moves per spec.md §4.2. Backtrack ties break diagonal, then
// stay-in-reference, then stay-in-learner.
func runDTW(ref, learner *types.FeatureBundle, w types.AlignmentWeights) *dtwResult {
	r, l := ref.Frames(), learner.Frames()
	cost := make([][]float64, r)
	pred := make([][]move, r)
	for i := range cost {
		cost[i] = make([]float64, l)
		pred[i] = make([]move, l)
	}

	for i := 0; i < r; i++ {
		for j := 0; j < l; j++ {
			d := frameCost(ref, learner, w, i, j)
			switch {
			case i == 0 && j == 0:
				cost[i][j] = d
				pred[i][j] = moveNone
			case i == 0:
				cost[i][j] = cost[i][j-1] + d
				pred[i][j] = moveStayLearner
			case j == 0:
				cost[i][j] = cost[i-1][j] + d
				pred[i][j] = moveStayReference
			default:
				diag := cost[i-1][j-1] + 2*d
				stayRef := cost[i-1][j] + d
				stayLearn := cost[i][j-1] + d

				best := diag
				bestMove := moveDiagonal
				if stayRef < best {
					best = stayRef
					bestMove = moveStayReference
				}
				if stayLearn < best {
					best = stayLearn
					bestMove = moveStayLearner
				}
				cost[i][j] = best
				pred[i][j] = bestMove
			}
		}
	}

	path := backtrack(pred, r-1, l-1)
	return &dtwResult{path: path, totalCost: cost[r-1][l-1]}
}

func backtrack(pred [][]move, i, j int) []point {
	var reversed []point
	for {
		reversed = append(reversed, point{i, j})
		if i == 0 && j == 0 {
			break
		}
		switch pred[i][j] {
		case moveDiagonal:
			i--
			j--
		case moveStayReference:
			i--
		case moveStayLearner:
			j--
		default:
			// Only (0,0) has moveNone; unreachable given the loop guard above.
			i, j = 0, 0
		}
	}

	path := make([]point, len(reversed))
	for k, p := range reversed {
		path[len(reversed)-1-k] = p
	}
	return path
}
