// Package influx writes samples to InfluxDB v2.
//
// Selected with store.backend: influxdb. Each sample is one point in
// store.influxdb.measurement tagged series=<key> with a single "value"
// field, written through the blocking write API.
//
//	store:
//	  backend: influxdb
//	  url: "http://localhost:8086"
//	  influxdb:
//	    org: "home"
//	    bucket: "sensors"
//	    token: ""   # prefer SENSORBRIDGE_INFLUXDB_TOKEN
package influx
