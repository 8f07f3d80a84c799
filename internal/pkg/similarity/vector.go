package similarity

import "math"

// Cosine 余弦相似度 dot(u,v)/(|u||v|)；维度不一致或任一为零向量时返回 0
func Cosine(u, v []float32) float64 {
	if len(u) == 0 || len(u) != len(v) {
		return 0
	}
	var dot, nu, nv float64
	for i := range u {
		a, b := float64(u[i]), float64(v[i])
		dot += a * b
		nu += a * a
		nv += b * b
	}
	if nu == 0 || nv == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(nu) * math.Sqrt(nv))
	// 浮点误差
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
