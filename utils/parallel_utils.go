package utils

// PartitionMap splits the index space [0, MaxIndex) into ParallelDegree
// contiguous buckets whose sizes differ by at most one.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) Split1D(bucketNum int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
		startAdd  = remainder
		endAdd    int
	)
	// The first remainder buckets carry one extra index each
	if bucketNum < remainder {
		startAdd = bucketNum
		endAdd = 1
	}
	bucket[0] = bucketNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bucketNum int) (kMax int) {
	var (
		k1, k2 = pm.GetBucketRange(bucketNum)
	)
	kMax = k2 - k1
	return
}

// GetBucket finds the bucket holding index k, or bucketNum = -1 when k is
// outside [0, MaxIndex).
func (pm *PartitionMap) GetBucket(k int) (bucketNum, kMin, kMax int) {
	_, bucketNum, kMin, kMax = pm.getBucketWithTryCount(k)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(k int) (tryCount, bucketNum, kMin, kMax int) {
	if k < 0 || k >= pm.MaxIndex {
		return 0, -1, 0, 0
	}
	// Initial guess from the average bucket size
	bucketNum = pm.ParallelDegree * k / pm.MaxIndex
	for !(pm.Partitions[bucketNum][0] <= k && pm.Partitions[bucketNum][1] > k) {
		if pm.Partitions[bucketNum][0] > k {
			bucketNum--
		} else {
			bucketNum++
		}
		tryCount++
	}
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}
