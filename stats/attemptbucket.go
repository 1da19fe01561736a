package stats

// AttemptBuckets
//
// 用來快速定位生成次數 -> DistRecord 位置
//
// 請勿修改預設值
//   - attempts區間: [1,1], [2,2], [3,4], [5,7], [8,15], [16,+inf)
type AttemptBuckets struct {
	attemptBucket    []int
	attemptBucketStr []string
}

// Buckets
//
// 只有雙偶階會重試，attempts 的量級很小，線性掃描即可
//
// 請勿修改預設值
var Buckets *AttemptBuckets = &AttemptBuckets{
	attemptBucket:    []int{1, 2, 3, 5, 8, 16},
	attemptBucketStr: []string{"[1,1]", "[2,2]", "[3,4]", "[5,7]", "[8,15]", "[16,+inf)"},
}

func (b *AttemptBuckets) AttemptBucketStr() []string {
	return b.attemptBucketStr
}

func (b *AttemptBuckets) Index(attempts int) int {
	for i := 1; i < len(b.attemptBucket); i++ {
		if attempts < b.attemptBucket[i] {
			return i - 1
		}
	}
	return len(b.attemptBucket) - 1
}
