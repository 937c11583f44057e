package math3d

// Mat3 is a 3x3 matrix stored in column-major order, used for the vertex
// stage's normal matrix.
//
// Memory layout (indices):
// | 0  3  6 |
// | 1  4  7 |
// | 2  5  8 |
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// UpperMat3 extracts the upper-left 3x3 block of a Mat4 (the linear part of
// a transform, without translation).
func UpperMat3(m Mat4) Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Mul multiplies two matrices: a * b.
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for col := range 3 {
		for row := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row+k*3] * b[k+col*3]
			}
			m[row+col*3] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 through the matrix.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat3) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[7]*m[5]) -
		m[3]*(m[1]*m[8]-m[7]*m[2]) +
		m[6]*(m[1]*m[5]-m[4]*m[2])
}

// Inverse returns the inverse of the matrix. Returns the identity if the
// matrix is singular (det=0), matching Mat4's convention.
func (m Mat3) Inverse() Mat3 {
	det := m.Determinant()
	if det == 0 {
		return Identity3()
	}
	invDet := 1.0 / det

	return Mat3{
		(m[4]*m[8] - m[7]*m[5]) * invDet,
		-(m[1]*m[8] - m[7]*m[2]) * invDet,
		(m[1]*m[5] - m[4]*m[2]) * invDet,

		-(m[3]*m[8] - m[6]*m[5]) * invDet,
		(m[0]*m[8] - m[6]*m[2]) * invDet,
		-(m[0]*m[5] - m[3]*m[2]) * invDet,

		(m[3]*m[7] - m[6]*m[4]) * invDet,
		-(m[0]*m[7] - m[6]*m[1]) * invDet,
		(m[0]*m[4] - m[3]*m[1]) * invDet,
	}
}

// NormalMatrix computes transpose(inverse(upper-3x3(model))), the matrix
// used to transform normals so that non-uniform scale does not skew them.
func NormalMatrix(model Mat4) Mat3 {
	return UpperMat3(model).Inverse().Transpose()
}
