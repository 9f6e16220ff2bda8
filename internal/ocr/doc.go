// Package ocr reads handwritten text from cropped price tags using the Azure
// Computer Vision "Recognize Text" API.
//
// Recognition is asynchronous on the server side, so reading a tag takes two
// kinds of request:
//
//  1. Submit: POST the encoded image to the region-specific endpoint with
//     mode=Handwritten. A 2xx response carries an Operation-Location header
//     pointing at the job.
//  2. Poll: GET the job location until its status is "Succeeded". Polls are
//     spaced by a fixed interval and bounded by an attempt budget
//     (1 second and 10 attempts by default).
//
// On success every "text" value of every element of every "lines" array in
// the result document is returned in document order, i.e. the equivalent of
// the JSONPath selector $..lines[*].text.
//
// # Error Handling
//
//   - ErrTimeout: the attempt budget ran out before the job succeeded
//   - ErrFailed: the service reported status "Failed"
//   - ErrAuth: the subscription key was rejected (401/403)
//   - ErrServiceUnavailable: transport failure, throttling or 5xx
//   - *ServiceError: any other non-2xx response, with the service's error
//     code and message
//
// No partial result is returned with an error.
package ocr
