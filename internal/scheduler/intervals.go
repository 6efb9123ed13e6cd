// Package scheduler はビン方式の間隔反復スケジューリングを提供する。
//
// カードはビン0（未学習）から始まり、正解のたびに1つ上のビンへ昇格する。
// ビンが上がるほど次回復習までの間隔が長くなり、ビン11に到達したカードは
// マスター済みとして二度と出題されない。誤答したカードはビン1に降格し、
// 誤答回数が閾値に達したカードはhard_to_rememberとして出題から退避される。
package scheduler

import "time"

// binIntervals はビンごとの復習間隔テーブル。
// 正解してそのビンに到達したカードは、この間隔の経過後に復習期限が到来する。
var binIntervals = [...]time.Duration{
	0:  0, // 未学習カードは常に出題対象
	1:  5 * time.Second,
	2:  25 * time.Second,
	3:  2 * time.Minute,
	4:  10 * time.Minute,
	5:  1 * time.Hour,
	6:  5 * time.Hour,
	7:  24 * time.Hour,
	8:  5 * 24 * time.Hour,
	9:  25 * 24 * time.Hour,
	10: 120 * 24 * time.Hour,
}

// neverInterval は終端ビン（11）用の実質的に到来しない間隔。
// ビン11のカードは選択クエリからも除外されるため、この値が参照されることはないが、
// next_review列を意味のある値で埋めておく。
const neverInterval = 100 * 365 * 24 * time.Hour

// IntervalForBin は指定ビンの復習間隔を返す。
// 終端ビン（11）以上にはneverIntervalを返す。
func IntervalForBin(bin int) time.Duration {
	if bin < 0 {
		return 0
	}
	if bin >= len(binIntervals) {
		return neverInterval
	}
	return binIntervals[bin]
}
