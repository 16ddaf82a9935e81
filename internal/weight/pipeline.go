package weight

type ComputeParams struct {
	Granularity Granularity
	// Target is nil when no goal weight is set.
	Target *float64
}

// Compute runs the whole aggregation and projection pipeline over one
// snapshot of observations.
func Compute(obs []Observation, params ComputeParams, builder *Builder) Chart {
	view := Aggregate(obs, params.Granularity)
	return builder.Build(view, params.Target)
}
