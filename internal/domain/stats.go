package domain

// Extent is the [Min, Max] range of the valid values in a collection.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ExtentOf returns the range of the valid metrics yielded by values. The
// boolean is false when none is valid.
func ExtentOf(values []Metric) (Extent, bool) {
	var e Extent
	found := false
	for _, m := range values {
		v, ok := m.Float()
		if !ok {
			continue
		}
		if !found {
			e = Extent{Min: v, Max: v}
			found = true
			continue
		}
		e.Min = min(e.Min, v)
		e.Max = max(e.Max, v)
	}
	return e, found
}

// ObservationExtent is ExtentOf over one field of the observations.
func ObservationExtent(obs []Observation, field func(Observation) Metric) (Extent, bool) {
	values := make([]Metric, len(obs))
	for i, o := range obs {
		values[i] = field(o)
	}
	return ExtentOf(values)
}

// Normalize maps m linearly from e onto [0, 1]. A degenerate extent maps
// every valid value to 0.5. Invalid input stays invalid.
func Normalize(m Metric, e Extent) Metric {
	v, ok := m.Float()
	if !ok {
		return m
	}
	span := e.Max - e.Min
	if span == 0 {
		return Valid(0.5)
	}
	return Valid((v - e.Min) / span)
}

// Field accessors for ObservationExtent and view code.

func LifeSatisfactionOf(o Observation) Metric      { return o.LifeSatisfaction }
func MedianIncomeOf(o Observation) Metric          { return o.MedianIncome }
func IncomePerSatisfactionOf(o Observation) Metric { return o.IncomePerSatisfaction }
func IncomeGrowthOf(o Observation) Metric          { return o.IncomeGrowth }
func SatisfactionChangeOf(o Observation) Metric    { return o.SatisfactionChange }
