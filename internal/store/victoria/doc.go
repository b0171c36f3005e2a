// Package victoria writes samples to VictoriaMetrics over its InfluxDB
// line protocol endpoint.
//
// Each sample is POSTed to /write as
//
//	environment,series=TS:TEMPERATURE value=21.4
//
// and is queryable as environment_value{series="TS:TEMPERATURE"}. The
// measurement name comes from store.victoriametrics.measurement.
//
// Selected for http:// and https:// store URLs unless store.backend says
// otherwise.
package victoria
