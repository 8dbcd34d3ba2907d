package model

// Version is the released version of iconpng.
const Version = "0.4.1"
