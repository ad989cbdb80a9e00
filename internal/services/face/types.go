package face

// Point is a landmark coordinate in source-frame pixels.
type Point struct {
	X float32
	Y float32
}

// Detection is a detected face with bounding box, confidence and optional
// landmarks. Landmark order follows YuNet: left eye, right eye, nose tip,
// left mouth corner, right mouth corner. Providers without landmark support
// leave the slice empty.
type Detection struct {
	X          float32
	Y          float32
	Width      float32
	Height     float32
	Confidence float32
	Landmarks  []Point
}
