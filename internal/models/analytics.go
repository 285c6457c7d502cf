package models

import "time"

// CTCBucket counts placed students inside one CTC range.
type CTCBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// GenderSplit counts male and female students.
type GenderSplit struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

// BranchStats summarises placements of one branch.
type BranchStats struct {
	DegreeType           DegreeType     `json:"degreeType"`
	Branch               string         `json:"branch"`
	TotalStudents        int            `json:"totalStudents"`
	Students             GenderSplit    `json:"students"`
	EligibleStudents     int            `json:"eligibleStudents"`
	Eligible             GenderSplit    `json:"eligible"`
	PlacedStudents       int            `json:"placedStudents"`
	Placed               GenderSplit    `json:"placed"`
	PlacementRateOfTotal float64        `json:"placementRateOfTotal"`
	PlacementRate        float64        `json:"placementRate"`
	HighestCTC           float64        `json:"highestCtc"`
	AverageCTC           float64        `json:"averageCtc"`
	MedianCTC            float64        `json:"medianCtc"`
	LowestCTC            float64        `json:"lowestCtc"`
	OnlyInternshipOffers int            `json:"onlyInternshipOffers"`
	OnlyFTEOffers        int            `json:"onlyFteOffers"`
	BothOffers           int            `json:"bothOffers"`
	UnplacedByCGPA       map[string]int `json:"unplacedByCgpa"`
	Distribution         []CTCBucket    `json:"distribution"`
	GeneratedAt          time.Time      `json:"generatedAt"`
}
