package models

type Student struct {
	Name       string
	PostalCode int
}

type Center struct {
	Name       string
	PostalCode int
}

// Assignment pairs a student with the center chosen for them.
// Distance is the absolute pincode difference between the two.
type Assignment struct {
	Student  Student
	Center   Center
	Distance int
}

type CenterLoad struct {
	Center      Center
	Students    int
	MaxDistance int
}
