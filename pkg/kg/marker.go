package kg

import (
	"regexp"
	"strconv"
)

// 链边界标记
const (
	// HeadMarker 链起点
	HeadMarker = "[HEAD]"
	// TailMarker 链终点
	TailMarker = "[TAIL]"
)

// 跳位标记方向
const (
	forwardPrefix = "Int"
	reversePrefix = "Rev"
)

// MarkerPattern 匹配全部标记（包括超出注册范围的跳位标记）
var MarkerPattern = regexp.MustCompile(`\[(?:HEAD|TAIL|(?:Int|Rev)[0-9]+_[12])\]`)

// IntMarker 返回正向跳位标记 [Int{k}_{slot}]
func IntMarker(k, slot int) string {
	return hopMarker(forwardPrefix, k, slot)
}

// RevMarker 返回反向跳位标记 [Rev{k}_{slot}]
func RevMarker(k, slot int) string {
	return hopMarker(reversePrefix, k, slot)
}

func hopMarker(prefix string, k, slot int) string {
	return "[" + prefix + strconv.Itoa(k) + "_" + strconv.Itoa(slot) + "]"
}

// Markers 返回 numHops 跳所需注册到分词器的标记集合。
//
// 顺序为 [HEAD]、[TAIL]，之后每一跳依次为
// Int{2i-1}_1、Int{2i-1}_2、Rev{2i-1}_1、Rev{2i-1}_2、Int{2i}_1、Int{2i}_2、Rev{2i}_1、Rev{2i}_2。
func Markers(numHops int) []string {
	if numHops < 0 {
		numHops = 0
	}
	markers := make([]string, 0, 2+8*numHops)
	markers = append(markers, HeadMarker, TailMarker)
	for i := 1; i <= numHops; i++ {
		odd, even := 2*i-1, 2*i
		markers = append(markers,
			IntMarker(odd, 1), IntMarker(odd, 2),
			RevMarker(odd, 1), RevMarker(odd, 2),
			IntMarker(even, 1), IntMarker(even, 2),
			RevMarker(even, 1), RevMarker(even, 2),
		)
	}
	return markers
}

// IsMarker 判断 s 是否为一个完整的标记
func IsMarker(s string) bool {
	loc := MarkerPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
