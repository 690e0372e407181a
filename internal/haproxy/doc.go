// Package haproxy reads HAProxy's stats-over-CSV report and maps each row
// onto StatsD gauge lines.
//
// A report is fetched over HTTP (optionally with basic auth), parsed into
// one Row per proxy/server combination and handed to a Mapper, which
// produces a fixed, ordered set of lines per row:
//
//	<namespace>.<pxname with _ as .>.<lowercased svname>.<stat>:<value>|g
package haproxy
