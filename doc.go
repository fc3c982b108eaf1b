// Package closest finds the closest point on a static triangle mesh to a
// query point within a maximum search radius.
//
// A Query copies every triangle corner into a point cloud, three points per
// triangle, and indexes it with a k-d tree. Each query looks up the K
// nearest corners, projects the query point onto the triangles owning them
// and keeps the nearest projection. See Config for the accuracy/performance
// trade-off of K.
package closest
