// Package detection locates price tags in a photograph using a remote object
// detector.
//
// The detector is reached through the Detector interface so the pipeline does
// not depend on a particular vendor. Client implements it against the Azure
// Custom Vision prediction REST API; tests substitute an in-memory fake.
//
// # Results
//
// A detector returns every object it found as a Result: a label, a
// probability in [0,1] and a box normalized to the image size. Results keep
// the detector's output order and are never filtered by the client. Choosing
// which results to act on is the job of Filter.
//
// # Error Handling
//
// Transport failures, throttling and 5xx responses match ErrServiceUnavailable;
// rejected credentials match ErrAuth. Other non-2xx responses are returned as
// *ServiceError carrying the service's error code and message. All of these
// are fatal for the image being processed.
package detection
