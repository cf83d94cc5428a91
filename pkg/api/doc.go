// Package api defines the data types exchanged with vrmaction callers.
//
// It holds the resolved animation payload ([ActionRecord], [ExpressionEntry],
// [BoneTransform]), the immutable model capability descriptor
// ([Capabilities]), the structured error type ([APIError]), boundary
// validation for requests and loosely shaped custom-action input, and ID
// generation for the action history.
//
// The package performs no I/O. Vectors are mgl64.Vec3 values (radians for
// rotations) and serialize as three-element JSON arrays.
package api
