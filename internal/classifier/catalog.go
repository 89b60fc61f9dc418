package classifier

// Priority is the operational urgency assigned to a predicted class.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// ClassInfo describes one category the model can predict.
type ClassInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// catalog order is the index contract with the model's output vector. Never
// reorder entries without re-exporting the model with the same label order.
var catalog = []ClassInfo{
	{Name: "garbage", Description: "Garbage/litter on street", Priority: PriorityMedium},
	{Name: "open_manhole", Description: "Uncovered manhole - Safety hazard", Priority: PriorityCritical},
	{Name: "potholes", Description: "Road pothole - Needs repair", Priority: PriorityHigh},
	{Name: "road_normal", Description: "Normal road condition", Priority: PriorityLow},
	{Name: "streetlight_bad", Description: "Broken/non-functional streetlight", Priority: PriorityMedium},
	{Name: "streetlight_good", Description: "Working streetlight", Priority: PriorityLow},
}

// Catalog returns the ordered class catalog for client discovery.
func Catalog() []ClassInfo {
	out := make([]ClassInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Labels returns the class names in model output order.
func Labels() []string {
	labels := make([]string, len(catalog))
	for i, info := range catalog {
		labels[i] = info.Name
	}
	return labels
}

// NumClasses is the length every model output vector must have.
func NumClasses() int {
	return len(catalog)
}
