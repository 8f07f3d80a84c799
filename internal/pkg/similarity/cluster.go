package similarity

// Greedy 贪心单链聚类。
// 按给定顺序遍历，每个未处理的向量作为新簇的首项，之后扫描剩余未处理向量，
// 与首项余弦相似度 >= threshold 的并入该簇。nil 向量（向量化失败）不参与本轮，保持未处理。
// 返回成员数 >= minSize 的簇，元素为输入下标，顺序与输入顺序一致。
func Greedy(vectors [][]float32, threshold float64, minSize int) [][]int {
	if minSize < 1 {
		minSize = 1
	}
	processed := make([]bool, len(vectors))
	clusters := make([][]int, 0)

	for i, leader := range vectors {
		if processed[i] || leader == nil {
			continue
		}
		processed[i] = true
		members := []int{i}

		for j := i + 1; j < len(vectors); j++ {
			if processed[j] || vectors[j] == nil {
				continue
			}
			if Cosine(leader, vectors[j]) >= threshold {
				members = append(members, j)
				processed[j] = true
			}
		}

		if len(members) >= minSize {
			clusters = append(clusters, members)
		}
	}
	return clusters
}
